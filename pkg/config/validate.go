package config

import (
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/robfig/cron/v3"

	"mercator-hq/paramengine/pkg/function"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "repository.kind").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateRepository(&cfg.Repository)...)
	errs = append(errs, validateFunctions(cfg.Functions)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.Extraction != "all" && cfg.Extraction != "best" {
		errs = append(errs, FieldError{
			Field:   "engine.extraction",
			Message: fmt.Sprintf("invalid extraction %q: must be 'all' or 'best'", cfg.Extraction),
		})
	}
	if cfg.BatchSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "engine.batch_size",
			Message: "batch size must be positive",
		})
	}
	if cfg.WarmConcurrency <= 0 {
		errs = append(errs, FieldError{
			Field:   "engine.warm_concurrency",
			Message: "warm concurrency must be positive",
		})
	}
	if cfg.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RefreshSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "engine.refresh_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.RefreshSchedule, err),
			})
		}
	}
	return errs
}

func validateRepository(cfg *RepositoryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Kind {
	case "memory":
	case "file", "csv":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "repository.path",
				Message: fmt.Sprintf("path is required for %s repositories", cfg.Kind),
			})
		}
	case "sql":
		errs = append(errs, validateSQL(&cfg.SQL)...)
	default:
		errs = append(errs, FieldError{
			Field:   "repository.kind",
			Message: fmt.Sprintf("invalid repository kind %q: must be 'memory', 'file', 'csv' or 'sql'", cfg.Kind),
		})
	}

	if cfg.Watch && cfg.Kind != "file" && cfg.Kind != "csv" {
		errs = append(errs, FieldError{
			Field:   "repository.watch",
			Message: "watch is only supported for file and csv repositories",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "repository.debounce_interval",
			Message: "debounce interval must be non-negative",
		})
	}
	if utf8.RuneCountInString(cfg.CSV.Comma) != 1 {
		errs = append(errs, FieldError{
			Field:   "repository.csv.comma",
			Message: "comma must be a single character",
		})
	}
	return errs
}

func validateSQL(cfg *SQLConfig) []FieldError {
	var errs []FieldError

	switch cfg.Driver {
	case "sqlite", "sqlite3", "postgres":
	default:
		errs = append(errs, FieldError{
			Field:   "repository.sql.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite', 'sqlite3' or 'postgres'", cfg.Driver),
		})
	}
	if cfg.DSN == "" {
		errs = append(errs, FieldError{
			Field:   "repository.sql.dsn",
			Message: "dsn is required",
		})
	}
	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "repository.sql.max_open_conns",
			Message: "max open connections must be non-negative",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "repository.sql.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}
	return errs
}

// validateFunctions compiles every CEL expression so that syntax and type
// errors surface at startup.
func validateFunctions(fns map[string]string) []FieldError {
	var errs []FieldError
	for name, expr := range fns {
		field := "functions." + name
		if strings.TrimSpace(name) == "" {
			errs = append(errs, FieldError{Field: "functions", Message: "function name cannot be empty"})
			continue
		}
		if _, err := function.NewCELFunction(expr); err != nil {
			errs = append(errs, FieldError{Field: field, Message: err.Error()})
		}
	}
	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server",
			Message: "timeouts must be non-negative",
		})
	}

	names := make(map[string]bool, len(cfg.APIKeys))
	for i, k := range cfg.APIKeys {
		field := fmt.Sprintf("server.api_keys[%d]", i)
		if k.Name == "" || k.Key == "" {
			errs = append(errs, FieldError{Field: field, Message: "name and key are required"})
			continue
		}
		if names[k.Name] {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("duplicate client name %q", k.Name)})
		}
		names[k.Name] = true
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	return errs
}
