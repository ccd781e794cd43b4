// Package dispatch fans one query out to the selected agents concurrently.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agribot/internal/agents"
	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/common/metrics"
	"agribot/internal/models"
)

// DefaultCallTimeout bounds one agent call when no per-category timeout is
// configured. A few seconds keeps end-to-end latency predictable.
const DefaultCallTimeout = 5 * time.Second

type Config struct {
	DefaultTimeout time.Duration
	// Timeouts overrides the call deadline per category.
	Timeouts map[models.Category]time.Duration
}

type Dispatcher struct {
	registry *agents.Registry
	config   Config
	logger   logger.Logger
}

func NewDispatcher(registry *agents.Registry, config Config, log logger.Logger) *Dispatcher {
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = DefaultCallTimeout
	}
	return &Dispatcher{
		registry: registry,
		config:   config,
		logger:   log.With(map[string]interface{}{"component": "dispatch"}),
	}
}

// Dispatch calls every selected agent concurrently and returns one result per
// category once all outcomes are known. A slow or failing agent degrades only
// its own entry; sibling calls are never delayed or aborted. Cancelling ctx
// cancels in-flight calls cooperatively, and whatever completed before the
// cancellation is still returned.
func (d *Dispatcher) Dispatch(ctx context.Context, categories []models.Category, template *models.AgentRequest) map[models.Category]*models.AgentResult {
	metrics.ActiveDispatches.Inc()
	defer metrics.ActiveDispatches.Dec()

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[models.Category]*models.AgentResult, len(categories))

	for _, category := range categories {
		agent, ok := d.registry.Get(category)
		if !ok {
			results[category] = models.NewAgentFailure(category, apperrors.ErrCodeAgentError, "no agent registered")
			continue
		}

		wg.Add(1)
		go func(category models.Category, agent agents.Agent) {
			defer wg.Done()

			result := d.callOne(ctx, category, agent, template)

			mu.Lock()
			results[category] = result
			mu.Unlock()
		}(category, agent)
	}

	wg.Wait()
	return results
}

// callOne runs a single agent call under its own deadline. The agent runs in
// a child goroutine so a call that ignores its context still cannot hold the
// dispatch past the allowed timeout.
func (d *Dispatcher) callOne(ctx context.Context, category models.Category, agent agents.Agent, template *models.AgentRequest) *models.AgentResult {
	callCtx, cancel := context.WithTimeout(ctx, d.timeoutFor(category))
	defer cancel()

	req := &models.AgentRequest{
		Agent:          category,
		NormalizedText: template.NormalizedText,
		Location:       template.Location,
		UserContext:    template.UserContext,
		Knowledge:      template.Knowledge,
	}

	start := time.Now()
	resCh := make(chan *models.AgentResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("agent panicked", map[string]interface{}{
					"category": string(category),
					"panic":    fmt.Sprintf("%v", r),
				})
				resCh <- models.NewAgentFailure(category, apperrors.ErrCodeAgentError, fmt.Sprintf("panic: %v", r))
			}
		}()
		resCh <- agent.Process(callCtx, req)
	}()

	var result *models.AgentResult
	select {
	case result = <-resCh:
		if result == nil {
			result = models.NewAgentFailure(category, apperrors.ErrCodeAgentError, "agent returned no result")
		}
	case <-callCtx.Done():
		if callCtx.Err() == context.DeadlineExceeded {
			result = models.NewAgentFailure(category, apperrors.ErrCodeAgentTimeout, "call deadline exceeded")
		} else {
			result = models.NewAgentFailure(category, apperrors.ErrCodeAgentError, "request cancelled")
		}
	}

	elapsed := time.Since(start)
	metrics.AgentCallDuration.WithLabelValues(string(category)).Observe(elapsed.Seconds())

	if result.OK() {
		metrics.AgentCallsCompleted.WithLabelValues(string(category)).Inc()
		d.logger.Info("agent call completed", map[string]interface{}{
			"category":   string(category),
			"durationMs": elapsed.Milliseconds(),
			"confidence": result.Success.Confidence,
		})
	} else {
		metrics.AgentCallsFailed.WithLabelValues(string(category), string(result.Failure.Code)).Inc()
		d.logger.Warn("agent call failed", map[string]interface{}{
			"category":   string(category),
			"durationMs": elapsed.Milliseconds(),
			"errorCode":  string(result.Failure.Code),
		})
	}
	return result
}

func (d *Dispatcher) timeoutFor(category models.Category) time.Duration {
	if t, ok := d.config.Timeouts[category]; ok && t > 0 {
		return t
	}
	return d.config.DefaultTimeout
}
