// Package tracing configures OpenTelemetry for the engine.
//
// When tracing is disabled New returns a Tracer backed by the noop provider.
// Otherwise spans are batched to an OTLP gRPC collector. The engine receives
// the tracer through engine.SetTracer and opens "engine.Get" and
// "engine.function" spans:
//
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(ctx)
//	eng.SetTracer(tracer.Tracer())
package tracing
