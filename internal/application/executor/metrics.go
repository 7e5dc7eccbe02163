package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the workflow layer's Prometheus collectors
type Metrics struct {
	Executions  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Transitions *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_executions_total",
				Help: "Total number of workflow operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workflow_execution_duration_seconds",
				Help:    "Duration of workflow operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_transitions_total",
				Help: "Total number of audited status transitions staged",
			},
			[]string{"entity_type", "action"},
		),
	}
}
