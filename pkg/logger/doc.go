// Package logger builds the *slog.Logger values used across katal.
//
// Every constructor wraps its handler in a [LogHandlerDecorator], which runs
// [ContextExtractor] functions on each record's context. The request id
// middleware ships an extractor, so a logger built with it tags every
// request-scoped line:
//
//	log := logger.NewFromConfig(cfg.Log, middlewares.RequestIDExtractor())
//	app := katal.New(katal.WithCustomLogger(log))
//
//	// inside a handler or middleware
//	c.LogInfo("user created", "id", u.ID)
//	// {"level":"INFO","msg":"user created","id":"...","request_id":"0190..."}
//
// # Outputs
//
// [New] and [NewFromConfig] write JSON (or text, per [Config.Format]) to
// stdout. When [Config.Sentry] carries a DSN, records at or above its
// MinLevel are also sent to Sentry; an empty DSN or a failed SDK init
// falls back to stdout only.
//
// [NewWithSink] and [NewSinkHandler] adapt records to the [Sink] interface,
// a single Write(ctx, Entry) method, for destinations that are not slog
// handlers. [Fanout] combines several sinks.
//
// [NewNope] discards everything and is the default when no logger is set.
package logger
