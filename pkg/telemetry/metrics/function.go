package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/paramengine/pkg/config"
)

// FunctionMetrics tracks function invocations.
type FunctionMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewFunctionMetrics creates and registers function metrics.
func NewFunctionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FunctionMetrics {
	fm := &FunctionMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "function_calls_total",
				Help:      "Total number of function invocations",
			},
			[]string{"function", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "function_duration_seconds",
				Help:      "Duration of function invocations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"function"},
		),
	}

	registry.MustRegister(fm.total, fm.duration)
	return fm
}

// Record records one invocation.
func (fm *FunctionMetrics) Record(name, outcome string, duration time.Duration) {
	fm.total.WithLabelValues(name, outcome).Inc()
	fm.duration.WithLabelValues(name).Observe(duration.Seconds())
}
