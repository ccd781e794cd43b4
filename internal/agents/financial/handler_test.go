package financial

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

func TestProcessReferencePrices(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.Nop())

	result := h.Process(context.Background(), &models.AgentRequest{
		NormalizedText: "what is the price of wheat today",
	})

	require.True(t, result.OK())
	assert.Contains(t, result.Success.Answer, "MSP is 2425")
	assert.Equal(t, []string{"msp-table"}, result.Success.Sources)
}

func TestProcessBelowMSPSuggestsProcurement(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.Nop())

	// Maize reference mandi rate sits below its MSP.
	result := h.Process(context.Background(), &models.AgentRequest{
		NormalizedText: "makka ka bhav",
	})

	require.True(t, result.OK())
	found := false
	for _, rec := range result.Success.Recommendations {
		if strings.Contains(rec, "procurement centre") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestProcessLivePrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cotton", r.URL.Query().Get("commodity"))
		assert.Equal(t, "Nagpur", r.URL.Query().Get("market"))
		w.Write([]byte(`{"records":[{"commodity":"cotton","market":"Nagpur","modal_price":"7400"}]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MarketAPIBaseURL = server.URL
	h := NewHandler(cfg, logger.Nop())

	result := h.Process(context.Background(), &models.AgentRequest{
		NormalizedText: "cotton rate in mandi",
		Location:       "Nagpur",
	})

	require.True(t, result.OK())
	assert.Contains(t, result.Success.Answer, "7400 INR per quintal")
	assert.Equal(t, []string{"agmarknet"}, result.Success.Sources)
}

func TestProcessLiveFailureFallsBackToReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MarketAPIBaseURL = server.URL
	h := NewHandler(cfg, logger.Nop())

	result := h.Process(context.Background(), &models.AgentRequest{
		NormalizedText: "wheat mandi rate",
	})

	require.True(t, result.OK())
	assert.Equal(t, []string{"msp-table"}, result.Success.Sources)
}

func TestProcessLiveRetriesFlakyMarketAPI(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"records":[{"commodity":"wheat","market":"Pune","modal_price":"2550"}]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MarketAPIBaseURL = server.URL
	h := NewHandler(cfg, logger.Nop())

	result := h.Process(context.Background(), &models.AgentRequest{
		NormalizedText: "wheat mandi rate",
		Location:       "Pune",
	})

	require.True(t, result.OK(), "one transient failure recovers on retry")
	assert.Contains(t, result.Success.Answer, "2550 INR per quintal")
	assert.Equal(t, []string{"agmarknet"}, result.Success.Sources)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestProcessMarketTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MarketAPIBaseURL = server.URL
	cfg.Timeout = 50 * time.Millisecond
	h := NewHandler(cfg, logger.Nop())

	result := h.Process(context.Background(), &models.AgentRequest{
		NormalizedText: "wheat mandi rate",
	})

	require.False(t, result.OK())
	assert.Equal(t, apperrors.ErrCodeAgentTimeout, result.Failure.Code)
}

func TestProcessLoanAndInsurance(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.Nop())

	tests := []struct {
		name         string
		query        string
		wantInAnswer string
	}{
		{name: "kcc loan", query: "how do i get a kisan credit card loan", wantInAnswer: "Kisan Credit Card"},
		{name: "crop insurance", query: "fasal bima premium kitna hai pmfby", wantInAnswer: "PMFBY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Process(context.Background(), &models.AgentRequest{NormalizedText: tt.query})

			require.True(t, result.OK())
			assert.Contains(t, result.Success.Answer, tt.wantInAnswer)
			assert.GreaterOrEqual(t, result.Success.Confidence, 0.85)
		})
	}
}

func TestProcessUnknownCommodity(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.Nop())

	result := h.Process(context.Background(), &models.AgentRequest{
		NormalizedText: "what price will onions fetch",
	})

	require.True(t, result.OK())
	assert.Contains(t, result.Success.Answer, "mention the commodity")
	assert.Less(t, result.Success.Confidence, 0.5)
}

func TestHealthCheck(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.Nop())
	assert.Equal(t, agents.StateDegraded, h.HealthCheck(context.Background()).State)

	cfg := DefaultConfig()
	cfg.MarketAPIBaseURL = "http://localhost:9200"
	h = NewHandler(cfg, logger.Nop())
	assert.Equal(t, agents.StateHealthy, h.HealthCheck(context.Background()).State)
}
