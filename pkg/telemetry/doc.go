// Package telemetry groups the observability packages of the parameter
// engine.
//
//   - logging: slog logger factory with request and trace IDs
//   - metrics: Prometheus collector for queries, function calls and compiles
//   - tracing: OpenTelemetry tracer provider with an OTLP gRPC exporter
//   - health: liveness, readiness and version probes
//
// Components receive these explicitly; nothing in this tree installs global
// state except the tracer provider, which tracing.New registers so that
// propagation works across the HTTP server.
package telemetry
