package config

import "time"

// Default values for configuration fields.
const (
	// Engine defaults
	DefaultExtraction      = "all"
	DefaultBatchSize       = 500
	DefaultWarmConcurrency = 4

	// Repository defaults
	DefaultRepositoryKind   = "file"
	DefaultRepositoryPath   = "./params"
	DefaultDebounceInterval = 100 * time.Millisecond
	DefaultCSVComma         = ";"
	DefaultSQLDriver        = "sqlite"
	DefaultSQLDSN           = "data/params.db"
	DefaultSQLMaxOpenConns  = 10
	DefaultSQLBusyTimeout   = 5 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "paramengine"
	DefaultSampleRatio      = 1.0
	DefaultServiceName      = "paramengine"
)

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: true},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Booleans are
// left untouched except where a pointer distinguishes unset from false.
func ApplyDefaults(cfg *Config) {
	applyEngineDefaults(&cfg.Engine)
	applyRepositoryDefaults(&cfg.Repository)
	applyServerDefaults(&cfg.Server)
	applyTelemetryDefaults(&cfg.Telemetry)

	if cfg.Functions == nil {
		cfg.Functions = make(map[string]string)
	}
}

func applyEngineDefaults(cfg *EngineConfig) {
	if cfg.Extraction == "" {
		cfg.Extraction = DefaultExtraction
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.WarmConcurrency == 0 {
		cfg.WarmConcurrency = DefaultWarmConcurrency
	}
}

func applyRepositoryDefaults(cfg *RepositoryConfig) {
	if cfg.Kind == "" {
		cfg.Kind = DefaultRepositoryKind
	}
	if cfg.Path == "" {
		cfg.Path = DefaultRepositoryPath
	}
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.CSV.Comma == "" {
		cfg.CSV.Comma = DefaultCSVComma
	}
	if cfg.SQL.Driver == "" {
		cfg.SQL.Driver = DefaultSQLDriver
	}
	if cfg.SQL.DSN == "" {
		cfg.SQL.DSN = DefaultSQLDSN
	}
	if cfg.SQL.MaxOpenConns == 0 {
		cfg.SQL.MaxOpenConns = DefaultSQLMaxOpenConns
	}
	if cfg.SQL.BusyTimeout == 0 {
		cfg.SQL.BusyTimeout = DefaultSQLBusyTimeout
	}
	if cfg.SQL.Migrate == nil {
		migrate := true
		cfg.SQL.Migrate = &migrate
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultServiceName
	}
}
