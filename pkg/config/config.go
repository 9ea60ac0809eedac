package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Engine controls query evaluation and the prepared parameter cache.
	Engine EngineConfig `yaml:"engine"`

	// Repository selects where raw parameters are loaded from.
	Repository RepositoryConfig `yaml:"repository"`

	// Functions maps function names to CEL expressions.
	Functions map[string]string `yaml:"functions"`

	// Server configures the HTTP listener of `paramctl serve`.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig configures the engine and preparer.
type EngineConfig struct {
	// Extraction is the default leaf extraction policy: "all" or "best".
	// Default: "all"
	Extraction string `yaml:"extraction"`

	// TraceLevelValues records normalized level values as span attributes.
	TraceLevelValues bool `yaml:"trace_level_values"`

	// BatchSize is the number of entries requested per loader batch.
	// Default: 500
	BatchSize int `yaml:"batch_size"`

	// WarmConcurrency bounds parallel compilation during warm-up.
	// Default: 4
	WarmConcurrency int `yaml:"warm_concurrency"`

	// Warm lists parameters compiled at startup. "*" warms every parameter
	// the repository lists.
	Warm []string `yaml:"warm"`

	// RefreshSchedule is a cron expression for recompiling cached
	// parameters. Empty disables scheduled refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// RepositoryConfig selects and configures the parameter repository.
type RepositoryConfig struct {
	// Kind is one of "memory", "file", "csv" or "sql".
	// Default: "file"
	Kind string `yaml:"kind"`

	// Path is the directory for the file and csv kinds.
	// Default: "./params"
	Path string `yaml:"path"`

	// Watch reloads the file and csv kinds when the directory changes.
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces bursts of file changes.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// CSV configures the csv kind.
	CSV CSVConfig `yaml:"csv"`

	// SQL configures the sql kind.
	SQL SQLConfig `yaml:"sql"`
}

// CSVConfig configures CSV files.
type CSVConfig struct {
	// Comma is the field separator. Default: ";"
	Comma string `yaml:"comma"`

	// Compress writes zstd compressed files on save.
	Compress bool `yaml:"compress"`
}

// SQLConfig configures the SQL repository.
type SQLConfig struct {
	// Driver is "sqlite" (modernc), "sqlite3" (mattn) or "postgres".
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// DSN is the data source name, a file path for sqlite drivers.
	// Default: "data/params.db"
	DSN string `yaml:"dsn"`

	// MaxOpenConns limits postgres connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is the sqlite lock wait.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Migrate creates tables on startup.
	// Default: true
	Migrate *bool `yaml:"migrate"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// ListenAddress is "host:port". Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading a request. Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a response. Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// APIKeys lists the clients allowed to call the /v1 routes. When empty
	// the routes are open.
	APIKeys []APIKeyConfig `yaml:"api_keys"`
}

// APIKeyConfig is one client credential.
type APIKeyConfig struct {
	// Name identifies the client in logs.
	Name string `yaml:"name"`

	// Key is the secret presented as a bearer token or X-API-Key header.
	Key string `yaml:"key"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error. Default: "info"
	Level string `yaml:"level"`

	// Format is json or text. Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes metrics. Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint. Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes metric names. Default: "paramengine"
	Namespace string `yaml:"namespace"`

	// Subsystem is the optional second metric name segment.
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on span export.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces sampled. Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "paramengine"
	ServiceName string `yaml:"service_name"`
}

// MigrateEnabled reports whether the schema should be created on startup.
func (c *SQLConfig) MigrateEnabled() bool {
	return c.Migrate == nil || *c.Migrate
}
