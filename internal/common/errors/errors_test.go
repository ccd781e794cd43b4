package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardErrorImplementsError(t *testing.T) {
	err := NewEmptyQueryError()
	assert.Equal(t, "StandardError[EMPTY_QUERY]: Query text is empty", err.Error())

	// Wrapped errors stay recoverable through errors.As.
	wrapped := fmt.Errorf("handling query: %w", err)
	var stdErr *StandardError
	require.True(t, errors.As(wrapped, &stdErr))
	assert.Equal(t, ErrCodeEmptyQuery, stdErr.Code)
}

func TestConstructorsSetRetryability(t *testing.T) {
	assert.True(t, NewAgentTimeoutError("weather").Retryable)
	assert.True(t, NewAgentError("crop", errors.New("boom")).Retryable)
	assert.False(t, NewTranslationDegradedError("hi", errors.New("down")).Retryable)
	assert.False(t, NewAllAgentsFailedError([]string{"weather", "crop"}).Retryable)
	assert.False(t, NewNoAgentsError().Retryable)
}

func TestConstructorsCarryDetails(t *testing.T) {
	err := NewAgentTimeoutError("financial")
	assert.Equal(t, ErrCodeAgentTimeout, err.Code)
	assert.Contains(t, err.Details, "financial")
	assert.False(t, err.Timestamp.IsZero())

	all := NewAllAgentsFailedError([]string{"weather", "policy"})
	assert.Contains(t, all.Details, "weather,policy")
}

func TestIsDegraded(t *testing.T) {
	degraded := []ErrorCode{
		ErrCodeTranslationDegraded,
		ErrCodeClassificationAmbiguous,
		ErrCodeSynthesisFailed,
		ErrCodeKnowledgeUnavailable,
		ErrCodeQueryLogFailed,
	}
	for _, code := range degraded {
		assert.True(t, IsDegraded(code), string(code))
	}

	terminal := []ErrorCode{
		ErrCodeAgentTimeout,
		ErrCodeAgentError,
		ErrCodeAllAgentsFailed,
		ErrCodeEmptyQuery,
		ErrCodeNoAgents,
	}
	for _, code := range terminal {
		assert.False(t, IsDegraded(code), string(code))
	}
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTranslationDegraded, "LANGUAGE"},
		{ErrCodeClassificationAmbiguous, "INTENT"},
		{ErrCodeAgentTimeout, "AGENT"},
		{ErrCodeAllAgentsFailed, "AGENT"},
		{ErrCodeSynthesisFailed, "SYNTHESIS"},
		{ErrCodeQueryLogFailed, "PERSISTENCE"},
		{ErrCodeEmptyQuery, "OTHER"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetErrorCategory(tt.code), string(tt.code))
	}
}
