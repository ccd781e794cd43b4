package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "agribot/internal/common/errors"
	"agribot/internal/models"
)

type staticAgent struct {
	category models.Category
	status   Status
}

func (a *staticAgent) Category() models.Category { return a.category }

func (a *staticAgent) Process(_ context.Context, _ *models.AgentRequest) *models.AgentResult {
	return models.NewAgentSuccess(a.category, models.AgentSuccess{Answer: "ok", Confidence: 0.5})
}

func (a *staticAgent) HealthCheck(_ context.Context) Status { return a.status }

func healthy(cat models.Category) *staticAgent {
	return &staticAgent{category: cat, status: Status{State: StateHealthy}}
}

func TestNewRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry()
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeNoAgents, stdErr.Code)
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry(healthy(models.CategoryWeather), healthy(models.CategoryCrop))
	require.NoError(t, err)

	a, ok := r.Get(models.CategoryWeather)
	require.True(t, ok)
	assert.Equal(t, models.CategoryWeather, a.Category())

	_, ok = r.Get(models.CategoryPolicy)
	assert.False(t, ok)
}

func TestRegistryCategoriesFollowPriorityOrder(t *testing.T) {
	// Registered out of order; Categories normalizes to priority order.
	r, err := NewRegistry(
		healthy(models.CategoryPolicy),
		healthy(models.CategoryWeather),
		healthy(models.CategoryFinancial),
	)
	require.NoError(t, err)

	assert.Equal(t, []models.Category{
		models.CategoryWeather,
		models.CategoryFinancial,
		models.CategoryPolicy,
	}, r.Categories())
}

func TestRegistryIgnoresDuplicateCategory(t *testing.T) {
	first := healthy(models.CategoryWeather)
	second := healthy(models.CategoryWeather)
	r, err := NewRegistry(first, second)
	require.NoError(t, err)

	a, ok := r.Get(models.CategoryWeather)
	require.True(t, ok)
	assert.Same(t, Agent(first), a)
	assert.Len(t, r.All(), 1)
}

func TestRegistryOverall(t *testing.T) {
	tests := []struct {
		name   string
		states []HealthState
		want   HealthState
	}{
		{"all healthy", []HealthState{StateHealthy, StateHealthy}, StateHealthy},
		{"one degraded", []HealthState{StateHealthy, StateDegraded}, StateDegraded},
		{"none healthy", []HealthState{StateUnhealthy, StateUnhealthy}, StateUnhealthy},
	}

	categories := []models.Category{models.CategoryWeather, models.CategoryCrop}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []Agent
			for i, state := range tt.states {
				list = append(list, &staticAgent{category: categories[i], status: Status{State: state}})
			}
			r, err := NewRegistry(list...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Overall(context.Background()))
		})
	}
}

func TestRegistryHealthCheckReportsEveryAgent(t *testing.T) {
	r, err := NewRegistry(
		healthy(models.CategoryWeather),
		&staticAgent{category: models.CategoryCrop, status: Status{State: StateDegraded, Detail: "no API key"}},
	)
	require.NoError(t, err)

	report := r.HealthCheck(context.Background())
	require.Len(t, report, 2)
	assert.Equal(t, StateHealthy, report[models.CategoryWeather].State)
	assert.Equal(t, "no API key", report[models.CategoryCrop].Detail)
}
