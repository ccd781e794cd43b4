// Package provider holds the thin clients for the external AI collaborators:
// the GenAI HTTP service (detection, translation, generation) and the ollama
// embedding model.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agribot/internal/common/logger"
)

var (
	ErrProviderTimeout = errors.New("PROVIDER_TIMEOUT")
	ErrProviderFailed  = errors.New("PROVIDER_FAILED")
)

// GenAIConfig configures the GenAI HTTP client.
type GenAIConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// GenAIClient calls the external generation/translation service.
type GenAIClient struct {
	config GenAIConfig
	client *http.Client
	logger logger.Logger
}

func NewGenAIClient(config GenAIConfig, log logger.Logger) *GenAIClient {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	return &GenAIClient{
		config: config,
		// No client-level timeout; each call is bounded by its context.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"component": "genai"}),
	}
}

// Detect returns the language code and confidence for text.
func (c *GenAIClient) Detect(ctx context.Context, text string) (string, float64, error) {
	var out struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	}
	err := c.post(ctx, "/api/ai/detect-language", map[string]interface{}{"text": text}, &out)
	if err != nil {
		return "", 0, err
	}
	return out.Language, out.Confidence, nil
}

// Translate converts text from one language code to another.
func (c *GenAIClient) Translate(ctx context.Context, text, from, to string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	err := c.post(ctx, "/api/ai/translate", map[string]interface{}{
		"text": text,
		"from": from,
		"to":   to,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", fmt.Errorf("%w: empty translation", ErrProviderFailed)
	}
	return out.Text, nil
}

// Complete generates prose for prompt.
func (c *GenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	err := c.post(ctx, "/api/ai/generate", map[string]interface{}{"prompt": prompt}, &out)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *GenAIClient) post(ctx context.Context, path string, payload, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, _ := json.Marshal(payload)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between retries
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrProviderTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+path, bytes.NewBuffer(body))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProviderFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return ErrProviderTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrProviderTimeout
		}
		return fmt.Errorf("%w: %v", ErrProviderFailed, lastErr)
	}

	if resp == nil {
		return fmt.Errorf("%w: no successful response after retries", ErrProviderFailed)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode error: %v", ErrProviderFailed, err)
	}
	return nil
}
