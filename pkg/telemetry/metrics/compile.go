package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/paramengine/pkg/config"
)

// CompileMetrics tracks parameter compilation.
type CompileMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entries  *prometheus.GaugeVec
}

// NewCompileMetrics creates and registers compile metrics.
func NewCompileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompileMetrics {
	cm := &CompileMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compilations_total",
				Help:      "Total number of parameter compilations",
			},
			[]string{"parameter", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compile_duration_seconds",
				Help:      "Duration of parameter compilations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"parameter"},
		),
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compiled_entries",
				Help:      "Entries in the most recently compiled version of a parameter",
			},
			[]string{"parameter"},
		),
	}

	registry.MustRegister(cm.total, cm.duration, cm.entries)
	return cm
}

// Record records one compilation attempt. Entry counts are only updated on
// success.
func (cm *CompileMetrics) Record(parameter string, entries int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	cm.total.WithLabelValues(parameter, status).Inc()
	cm.duration.WithLabelValues(parameter).Observe(duration.Seconds())
	if err == nil {
		cm.entries.WithLabelValues(parameter).Set(float64(entries))
	}
}
