package models

import "time"

// Query captures one incoming request after language normalization.
// Immutable once built; the orchestrator passes it by pointer but never
// mutates it past construction.
type Query struct {
	ID                 string                 `json:"id"`
	RawText            string                 `json:"rawText"`
	Language           string                 `json:"language"`
	LanguageConfidence float64                `json:"languageConfidence"`
	NormalizedText     string                 `json:"normalizedText"`
	SessionID          string                 `json:"sessionId"`
	Location           string                 `json:"location,omitempty"`
	UserContext        map[string]interface{} `json:"userContext,omitempty"`
	ReceivedAt         time.Time              `json:"receivedAt"`
}

// AgentRequest is the read-only payload handed to one agent for one call.
// The dispatcher builds one per selected category and owns it for the call's
// lifetime.
type AgentRequest struct {
	Agent          Category               `json:"agent"`
	NormalizedText string                 `json:"normalizedText"`
	Location       string                 `json:"location,omitempty"`
	UserContext    map[string]interface{} `json:"userContext,omitempty"`
	Knowledge      []KnowledgeSnippet     `json:"knowledge,omitempty"`
}

// KnowledgeSnippet is one retrieved context passage.
type KnowledgeSnippet struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}
