package models

import (
	apperrors "agribot/internal/common/errors"
)

// AgentSuccess is the structured advice returned by one agent.
type AgentSuccess struct {
	Answer          string   `json:"answer"`
	Confidence      float64  `json:"confidence"` // always in [0,1]
	Sources         []string `json:"sources,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// AgentFailure records why one agent produced no advice. The dispatcher never
// discards these; the synthesizer reports them as caveats.
type AgentFailure struct {
	Agent   Category            `json:"agent"`
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message,omitempty"`
}

// AgentResult is the outcome of one agent call: exactly one of Success or
// Failure is set.
type AgentResult struct {
	Category Category      `json:"category"`
	Success  *AgentSuccess `json:"success,omitempty"`
	Failure  *AgentFailure `json:"failure,omitempty"`
}

// OK reports whether the call produced advice.
func (r *AgentResult) OK() bool {
	return r != nil && r.Success != nil
}

// NewAgentSuccess clamps confidence into [0,1] so the invariant holds no
// matter what an agent hands back.
func NewAgentSuccess(category Category, s AgentSuccess) *AgentResult {
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	return &AgentResult{Category: category, Success: &s}
}

// NewAgentFailure builds a Failure outcome for category.
func NewAgentFailure(category Category, code apperrors.ErrorCode, message string) *AgentResult {
	return &AgentResult{
		Category: category,
		Failure:  &AgentFailure{Agent: category, Code: code, Message: message},
	}
}
