// Package errors provides the standardized error taxonomy for the query pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Codes
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Degraded conditions. The pipeline continues past all of these.
	ErrCodeTranslationDegraded     ErrorCode = "TRANSLATION_DEGRADED"
	ErrCodeClassificationAmbiguous ErrorCode = "CLASSIFICATION_AMBIGUOUS"
	ErrCodeSynthesisFailed         ErrorCode = "SYNTHESIS_FAILED"
	ErrCodeKnowledgeUnavailable    ErrorCode = "KNOWLEDGE_UNAVAILABLE"
	ErrCodeQueryLogFailed          ErrorCode = "QUERY_LOG_FAILED"

	// Per-agent failures, isolated by the dispatcher.
	ErrCodeAgentTimeout ErrorCode = "AGENT_TIMEOUT"
	ErrCodeAgentError   ErrorCode = "AGENT_ERROR"

	// Terminal for one request: fixed apology response, not an HTTP error.
	ErrCodeAllAgentsFailed ErrorCode = "ALL_AGENTS_FAILED"

	// Invariant violations, the only hard errors surfaced to the caller.
	ErrCodeEmptyQuery ErrorCode = "EMPTY_QUERY"
	ErrCodeNoAgents   ErrorCode = "NO_AGENTS_REGISTERED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTranslationDegradedError records a translation provider failure. The
// original text is used downstream, so the condition is never retryable here.
func NewTranslationDegradedError(lang string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranslationDegraded,
		Message:   "Translation provider unavailable, original text used",
		Details:   fmt.Sprintf("language: %s, error: %v", lang, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationAmbiguousError records a zero-score classification that
// fell through to the default category.
func NewClassificationAmbiguousError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationAmbiguous,
		Message:   "No category scored above zero, default category used",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentTimeoutError creates a retryable per-agent timeout failure.
func NewAgentTimeoutError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentTimeout,
		Message:   "Agent call exceeded its deadline",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentError creates a retryable per-agent processing failure.
func NewAgentError(category string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentError,
		Message:   "Agent call failed",
		Details:   fmt.Sprintf("category: %s, error: %v", category, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisFailedError records a generation step failure. The synthesizer
// falls back deterministically, so the request itself is not retried.
func NewSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisFailed,
		Message:   "Answer generation failed, deterministic fallback used",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAllAgentsFailedError is terminal for the request.
func NewAllAgentsFailedError(categories []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAllAgentsFailed,
		Message:   "Every selected agent failed",
		Details:   fmt.Sprintf("categories: %s", strings.Join(categories, ",")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyQueryError creates the malformed-input invariant violation.
func NewEmptyQueryError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuery,
		Message:   "Query text is empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoAgentsError creates the empty-registry invariant violation.
func NewNoAgentsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoAgents,
		Message:   "Agent registry holds zero agents",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError wraps an arbitrary collaborator failure.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsDegraded reports whether the code marks a condition the pipeline
// continues past, as opposed to a per-request terminal state.
func IsDegraded(code ErrorCode) bool {
	switch code {
	case ErrCodeTranslationDegraded,
		ErrCodeClassificationAmbiguous,
		ErrCodeSynthesisFailed,
		ErrCodeKnowledgeUnavailable,
		ErrCodeQueryLogFailed:
		return true
	}
	return false
}

// GetErrorCategory returns the coarse category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TRANSLATION"):
		return "LANGUAGE"
	case strings.Contains(codeStr, "CLASSIFICATION"):
		return "INTENT"
	case strings.Contains(codeStr, "AGENT"):
		return "AGENT"
	case strings.Contains(codeStr, "SYNTHESIS"):
		return "SYNTHESIS"
	case strings.Contains(codeStr, "QUERY_LOG"):
		return "PERSISTENCE"
	default:
		return "OTHER"
	}
}
