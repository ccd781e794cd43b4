package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agribot_queries_processed_total",
			Help: "Total number of queries processed, by detected language and status",
		},
		[]string{"language", "status"},
	)

	AgentCallsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agribot_agent_calls_completed_total",
			Help: "Total number of successful agent calls, by category",
		},
		[]string{"category"},
	)

	AgentCallsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agribot_agent_calls_failed_total",
			Help: "Total number of failed agent calls, by category and error code",
		},
		[]string{"category", "error_code"},
	)

	AgentCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agribot_agent_call_duration_seconds",
			Help: "Duration of individual agent calls in seconds",
		},
		[]string{"category"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agribot_pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	ActiveDispatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agribot_active_dispatches",
			Help: "Number of agent fan-outs currently in flight",
		},
	)
)
