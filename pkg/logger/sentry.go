package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel is the lowest level forwarded as a Sentry log entry.
	// Only errors become Sentry issues.
	MinLevel slog.Level `yaml:"min_level" env:"SENTRY_MIN_LEVEL" envDefault:"WARN"`
}

// NewWithSentry is NewFromConfig with JSON output at info level plus the
// given Sentry settings.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	return NewFromConfig(Config{Level: "info", Format: "json", Sentry: cfg}, extractors...)
}

// withSentry tees records from local into Sentry. If the SDK refuses to
// start, the failure is logged through local and local is returned alone.
func withSentry(cfg SentryConfig, local slog.Handler) slog.Handler {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	})
	if err != nil {
		slog.New(local).Error("sentry disabled", ErrorAttr(err))
		return local
	}

	var forwarded []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= cfg.MinLevel {
			forwarded = append(forwarded, l)
		}
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   forwarded,
	}.NewSentryHandler(context.Background())
	return newFanoutHandler(local, remote)
}
