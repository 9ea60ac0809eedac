// Package config provides configuration management for the parameter engine.
//
// Configuration is loaded from a YAML file, completed with defaults,
// overridden from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("paramengine.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PARAMENGINE_SECTION_FIELD,
// for example:
//
//   - PARAMENGINE_REPOSITORY_KIND overrides repository.kind
//   - PARAMENGINE_REPOSITORY_SQL_DSN overrides repository.sql.dsn
//   - PARAMENGINE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Functions
//
// The functions section maps function names to CEL expressions. They are
// registered with the engine's function registry at startup and are typically
// referenced as level creators:
//
//	functions:
//	  region: 'ctx.country == "PL" ? "EU" : "OTHER"'
//
// # API keys
//
// Listing clients under server.api_keys makes the query routes require a
// key. Keys are not read from the environment:
//
//	server:
//	  api_keys:
//	    - name: billing
//	      key: 3f9c0e2a
package config
