package models

import "time"

// Exchange is one (query, answer) pair in a session window.
type Exchange struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionContext is the bounded conversational window for one session.
// Exchanges are most-recent-first and never exceed the configured capacity.
type SessionContext struct {
	SessionID string            `json:"sessionId"`
	CreatedAt time.Time         `json:"createdAt"`
	Exchanges []Exchange        `json:"exchanges"`
	Context   map[string]string `json:"context,omitempty"`
}
