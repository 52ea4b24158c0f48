package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics records task operations as Prometheus series.
type PromMetrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

var _ Recorder = (*PromMetrics)(nil)

// NewPromMetrics creates the task operation series and registers them on reg.
// It panics if they are already registered.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "task_operations_total",
			Help: "Number of task operations by outcome",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "task_operation_duration_seconds",
			Help:    "Latency of task operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.operations, m.latency)
	return m
}

// ObserveOperation counts one operation under its outcome and records its latency.
func (m *PromMetrics) ObserveOperation(operation, outcome string, d time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(d.Seconds())
}
