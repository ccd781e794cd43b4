package agents

import (
	"context"

	apperrors "agribot/internal/common/errors"
	"agribot/internal/models"
)

// Registry holds the available domain agents behind the Agent capability.
// It carries no business logic; adding an agent means implementing Agent and
// registering it here.
type Registry struct {
	agents map[models.Category]Agent
	order  []models.Category
}

// NewRegistry builds a registry from the given agents. An empty registry is
// an invariant violation, not a runtime state.
func NewRegistry(list ...Agent) (*Registry, error) {
	if len(list) == 0 {
		return nil, apperrors.NewNoAgentsError()
	}

	r := &Registry{agents: make(map[models.Category]Agent, len(list))}
	for _, a := range list {
		if _, dup := r.agents[a.Category()]; dup {
			continue
		}
		r.agents[a.Category()] = a
	}

	// Deterministic iteration order for health reports.
	for _, cat := range models.CategoryPriority {
		if _, ok := r.agents[cat]; ok {
			r.order = append(r.order, cat)
		}
	}
	return r, nil
}

// Get returns the agent for category.
func (r *Registry) Get(category models.Category) (Agent, bool) {
	a, ok := r.agents[category]
	return a, ok
}

// All returns the registered agents keyed by category.
func (r *Registry) All() map[models.Category]Agent {
	out := make(map[models.Category]Agent, len(r.agents))
	for k, v := range r.agents {
		out[k] = v
	}
	return out
}

// Categories returns the registered categories in priority order.
func (r *Registry) Categories() []models.Category {
	out := make([]models.Category, len(r.order))
	copy(out, r.order)
	return out
}

// HealthCheck polls every agent.
func (r *Registry) HealthCheck(ctx context.Context) map[models.Category]Status {
	out := make(map[models.Category]Status, len(r.agents))
	for _, cat := range r.order {
		out[cat] = r.agents[cat].HealthCheck(ctx)
	}
	return out
}

// Overall reduces the per-agent health to one state: healthy only when every
// agent is healthy, unhealthy only when none is.
func (r *Registry) Overall(ctx context.Context) HealthState {
	healthy := 0
	total := 0
	for _, status := range r.HealthCheck(ctx) {
		total++
		if status.State == StateHealthy {
			healthy++
		}
	}
	switch {
	case healthy == total:
		return StateHealthy
	case healthy == 0:
		return StateUnhealthy
	default:
		return StateDegraded
	}
}
