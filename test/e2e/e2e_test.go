// End-to-end smoke test against a running server. Opt in with:
//
//	AGRIBOT_E2E_URL=http://localhost:8080 go test ./test/e2e/...
package e2e

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("AGRIBOT_E2E_URL")
	if url == "" {
		t.Skip("AGRIBOT_E2E_URL not set, skipping e2e test")
	}
	return strings.TrimRight(url, "/")
}

func TestServerAnswersQuery(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Post(url+"/api/v1/query", "application/json",
		strings.NewReader(`{"text":"will it rain this week in nashik","session_id":"e2e-session"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Answer          string   `json:"answer"`
		Confidence      float64  `json:"confidence"`
		AgentsConsulted []string `json:"agents_consulted"`
		SessionID       string   `json:"session_id"`
		ProcessingTime  float64  `json:"processing_time"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.NotEmpty(t, body.Answer)
	assert.Greater(t, body.Confidence, 0.0)
	assert.NotEmpty(t, body.AgentsConsulted)
	assert.Equal(t, "e2e-session", body.SessionID)
	assert.Greater(t, body.ProcessingTime, 0.0)
}

func TestServerSessionHistory(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 30 * time.Second}

	_, err := client.Post(url+"/api/v1/query", "application/json",
		strings.NewReader(`{"text":"wheat sowing time","session_id":"e2e-history"}`))
	require.NoError(t, err)

	resp, err := client.Get(url + "/api/v1/session/e2e-history/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Exchanges []struct {
			Query string `json:"query"`
		} `json:"exchanges"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Exchanges)
}

func TestServerHealth(t *testing.T) {
	url := baseURL(t)

	resp, err := http.Get(url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, []string{"healthy", "degraded"}, body.Status)
}
