package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "PARAMENGINE_"

// LoadConfig loads configuration from a YAML file at the specified path,
// applies default values and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Config{
		Telemetry: TelemetryConfig{Metrics: MetricsConfig{Enabled: true}},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. An empty path starts from DefaultConfig.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = DefaultConfig()
	} else if cfg, err = LoadConfig(path); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// applyEnvOverrides applies PARAMENGINE_SECTION_FIELD overrides. Values that
// fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Engine overrides
	envString("ENGINE_EXTRACTION", &cfg.Engine.Extraction)
	envBool("ENGINE_TRACE_LEVEL_VALUES", &cfg.Engine.TraceLevelValues)
	envInt("ENGINE_BATCH_SIZE", &cfg.Engine.BatchSize)
	envInt("ENGINE_WARM_CONCURRENCY", &cfg.Engine.WarmConcurrency)
	envString("ENGINE_REFRESH_SCHEDULE", &cfg.Engine.RefreshSchedule)
	if val := os.Getenv(EnvPrefix + "ENGINE_WARM"); val != "" {
		cfg.Engine.Warm = nil
		for _, name := range strings.Split(val, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Engine.Warm = append(cfg.Engine.Warm, name)
			}
		}
	}

	// Repository overrides
	envString("REPOSITORY_KIND", &cfg.Repository.Kind)
	envString("REPOSITORY_PATH", &cfg.Repository.Path)
	envBool("REPOSITORY_WATCH", &cfg.Repository.Watch)
	envDuration("REPOSITORY_DEBOUNCE_INTERVAL", &cfg.Repository.DebounceInterval)
	envString("REPOSITORY_CSV_COMMA", &cfg.Repository.CSV.Comma)
	envBool("REPOSITORY_CSV_COMPRESS", &cfg.Repository.CSV.Compress)
	envString("REPOSITORY_SQL_DRIVER", &cfg.Repository.SQL.Driver)
	envString("REPOSITORY_SQL_DSN", &cfg.Repository.SQL.DSN)
	envInt("REPOSITORY_SQL_MAX_OPEN_CONNS", &cfg.Repository.SQL.MaxOpenConns)
	envDuration("REPOSITORY_SQL_BUSY_TIMEOUT", &cfg.Repository.SQL.BusyTimeout)
	if val := os.Getenv(EnvPrefix + "REPOSITORY_SQL_MIGRATE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Repository.SQL.Migrate = &b
		}
	}

	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
