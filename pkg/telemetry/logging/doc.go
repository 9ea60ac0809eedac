// Package logging builds the *slog.Logger used across the engine.
//
// New configures a JSON or text handler at the requested level and wraps it
// in a ContextHandler, which copies the request id stored with WithRequestID
// and the active OpenTelemetry trace and span ids onto every record logged
// with a context:
//
//	logger, err := logging.New(logging.Config{Level: "debug", Format: "text"})
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "query served", "parameter", name)
package logging
