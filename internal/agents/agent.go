// Package agents defines the uniform domain-agent capability and the registry
// the dispatcher routes through.
package agents

import (
	"context"

	"agribot/internal/models"
)

// HealthState is the coarse agent health level.
type HealthState string

const (
	StateHealthy   HealthState = "healthy"
	StateDegraded  HealthState = "degraded"
	StateUnhealthy HealthState = "unhealthy"
)

// Status reports one agent's health.
type Status struct {
	State  HealthState `json:"state"`
	Detail string      `json:"detail,omitempty"`
}

// Agent is the capability every domain agent implements. Process returns a
// result, never an error: failures are data, captured in AgentResult.Failure
// so the synthesizer can report incomplete coverage.
type Agent interface {
	Category() models.Category
	Process(ctx context.Context, req *models.AgentRequest) *models.AgentResult
	HealthCheck(ctx context.Context) Status
}
