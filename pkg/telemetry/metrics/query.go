package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/paramengine/pkg/config"
)

// QueryMetrics tracks engine Get calls.
type QueryMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     prometheus.Histogram
}

// NewQueryMetrics creates and registers query metrics.
func NewQueryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *QueryMetrics {
	qm := &QueryMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "queries_total",
				Help:      "Total number of parameter queries",
			},
			[]string{"parameter", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "query_duration_seconds",
				Help:      "Duration of parameter queries in seconds",
				// Lookups are sub-millisecond unless a level creator is slow.
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"parameter"},
		),
		rows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "query_rows",
				Help:      "Rows returned per successful query",
				Buckets:   []float64{0, 1, 2, 5, 10, 50, 100, 1000},
			},
		),
	}

	registry.MustRegister(qm.total, qm.duration, qm.rows)
	return qm
}

// Record records one query.
func (qm *QueryMetrics) Record(parameter, outcome string, duration time.Duration, rows int) {
	qm.total.WithLabelValues(parameter, outcome).Inc()
	qm.duration.WithLabelValues(parameter).Observe(duration.Seconds())
	if outcome != "error" {
		qm.rows.Observe(float64(rows))
	}
}
