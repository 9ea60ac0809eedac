package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/paramengine/pkg/config"
)

// MaxLabelValues bounds the distinct parameter or function names tracked.
const MaxLabelValues = 10000

// OverflowLabel replaces names beyond MaxLabelValues.
const OverflowLabel = "other"

// Collector records query, function and compile metrics.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	queries   *QueryMetrics
	functions *FunctionMetrics
	compiles  *CompileMetrics

	parameters *CardinalityLimiter
	names      *CardinalityLimiter
}

// NewCollector creates a collector registered with registry. A nil registry
// creates a new one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		queries:    NewQueryMetrics(cfg, registry),
		functions:  NewFunctionMetrics(cfg, registry),
		compiles:   NewCompileMetrics(cfg, registry),
		parameters: NewCardinalityLimiter(MaxLabelValues),
		names:      NewCardinalityLimiter(MaxLabelValues),
	}
}

// RecordQuery implements engine.Recorder.
func (c *Collector) RecordQuery(parameter, outcome string, duration time.Duration, rows int) {
	if !c.config.Enabled {
		return
	}
	c.queries.Record(c.parameters.Label(parameter), outcome, duration, rows)
}

// RecordFunction implements engine.Recorder.
func (c *Collector) RecordFunction(name, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.functions.Record(c.names.Label(name), outcome, duration)
}

// ObserveCompile implements prepared.Observer.
func (c *Collector) ObserveCompile(parameter string, entries int, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.compiles.Record(c.parameters.Label(parameter), entries, duration, err)
}

// RegisterCacheSize exports fn as the cached_parameters gauge.
func (c *Collector) RegisterCacheSize(fn func() int) error {
	return c.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "cached_parameters",
			Help:      "Number of compiled parameters held by the preparer",
		},
		func() float64 { return float64(fn()) },
	))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting max distinct values.
func NewCardinalityLimiter(max int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: max,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or can still be admitted.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Label returns value, or OverflowLabel once the limit is reached.
func (cl *CardinalityLimiter) Label(value string) string {
	if cl.Allow(value) {
		return value
	}
	return OverflowLabel
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
