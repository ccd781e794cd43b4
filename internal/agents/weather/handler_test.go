package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agribot/internal/agents"
	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/models"
)

func newTestHandler(t *testing.T, handlerFunc http.HandlerFunc) *Handler {
	t.Helper()
	server := httptest.NewServer(handlerFunc)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.APIKey = "test-key"
	return NewHandler(cfg, logger.Nop())
}

func TestProcessBuildsAdviceFromConditions(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantInAnswer   string
		wantRecommends string
	}{
		{
			name:           "rain blocks spraying",
			body:           `{"name":"Nashik","weather":[{"main":"Rain","description":"moderate rain"}],"main":{"temp":27.4,"humidity":88},"wind":{"speed":3.2}}`,
			wantInAnswer:   "moderate rain",
			wantRecommends: "postpone pesticide spraying",
		},
		{
			name:           "heat advises morning irrigation",
			body:           `{"name":"Nagpur","weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":41.0,"humidity":20},"wind":{"speed":1.0}}`,
			wantInAnswer:   "41.0°C",
			wantRecommends: "early morning or evening",
		},
		{
			name:           "mild weather is routine",
			body:           `{"name":"Pune","weather":[{"main":"Clouds","description":"scattered clouds"}],"main":{"temp":24.0,"humidity":55},"wind":{"speed":2.0}}`,
			wantInAnswer:   "scattered clouds",
			wantRecommends: "routine field operations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
				w.Write([]byte(tt.body))
			})

			result := h.Process(context.Background(), &models.AgentRequest{
				Agent:          models.CategoryWeather,
				NormalizedText: "should I spray today",
				Location:       "Nashik",
			})

			require.True(t, result.OK())
			assert.Contains(t, result.Success.Answer, tt.wantInAnswer)
			found := false
			for _, rec := range result.Success.Recommendations {
				if strings.Contains(strings.ToLower(rec), strings.ToLower(tt.wantRecommends)) {
					found = true
				}
			}
			assert.True(t, found, "expected recommendation mentioning %q", tt.wantRecommends)
			assert.Equal(t, []string{"openweathermap"}, result.Success.Sources)
		})
	}
}

func TestProcessTimeout(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	h.config.Timeout = 50 * time.Millisecond
	h.client.Timeout = 50 * time.Millisecond

	result := h.Process(context.Background(), &models.AgentRequest{Location: "Nashik"})

	require.False(t, result.OK())
	assert.Equal(t, apperrors.ErrCodeAgentTimeout, result.Failure.Code)
}

func TestProcessAPIError(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result := h.Process(context.Background(), &models.AgentRequest{Location: "Nashik"})

	require.False(t, result.OK())
	assert.Equal(t, apperrors.ErrCodeAgentError, result.Failure.Code)
}

func TestProcessRetriesFlakyAPI(t *testing.T) {
	var calls int32
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"name":"Nashik","weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":25,"humidity":40},"wind":{"speed":2}}`))
	})

	result := h.Process(context.Background(), &models.AgentRequest{Location: "Nashik"})

	require.True(t, result.OK(), "one transient failure recovers on retry")
	assert.Contains(t, result.Success.Answer, "clear sky")
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestProcessRetriesExhausted(t *testing.T) {
	var calls int32
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	result := h.Process(context.Background(), &models.AgentRequest{Location: "Nashik"})

	require.False(t, result.OK())
	assert.Equal(t, apperrors.ErrCodeAgentError, result.Failure.Code)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "one initial call plus one retry")
}

func TestProcessWithoutAPIKeyUsesSeasonalAdvisory(t *testing.T) {
	cfg := DefaultConfig()
	h := NewHandler(cfg, logger.Nop())

	result := h.Process(context.Background(), &models.AgentRequest{Location: "Ludhiana"})

	require.True(t, result.OK())
	assert.Contains(t, result.Success.Answer, "Seasonal outlook")
	assert.Equal(t, 0.5, result.Success.Confidence)
}

func TestSeasonalAdvisoryCalendar(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.Nop())

	tests := []struct {
		month time.Month
		want  string
	}{
		{time.July, "kharif"},
		{time.October, "rabi sowing"},
		{time.January, "winter"},
		{time.April, "summer"},
	}

	for _, tt := range tests {
		success := h.seasonalAdvisory("Delhi,IN", time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC))
		assert.Contains(t, success.Answer, tt.want, "month %s", tt.month)
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("degraded without api key", func(t *testing.T) {
		h := NewHandler(DefaultConfig(), logger.Nop())
		status := h.HealthCheck(context.Background())
		assert.Equal(t, agents.StateDegraded, status.State)
	})

	t.Run("healthy when api answers", func(t *testing.T) {
		h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"Delhi","weather":[{"main":"Clear","description":"clear"}],"main":{"temp":25,"humidity":40},"wind":{"speed":2}}`))
		})
		status := h.HealthCheck(context.Background())
		assert.Equal(t, agents.StateHealthy, status.State)
	})

	t.Run("unhealthy when api fails", func(t *testing.T) {
		h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		status := h.HealthCheck(context.Background())
		assert.Equal(t, agents.StateUnhealthy, status.State)
	})
}
