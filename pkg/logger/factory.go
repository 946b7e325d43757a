package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the output format and minimum level of a logger.
// It is loaded from YAML or environment variables by pkg/config.
type Config struct {
	Sentry SentryConfig `yaml:"sentry"`
	Level  string       `yaml:"level" env:"LOG_LEVEL" envDefault:"info"`
	Format string       `yaml:"format" env:"LOG_FORMAT" envDefault:"json"`
}

// New logs JSON at info level to stdout.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewFromConfig(Config{}, extractors...)
}

// NewFromConfig logs to stdout in cfg.Format at cfg.Level, and also to
// Sentry when cfg.Sentry.DSN is set. Extractors decorate both outputs.
func NewFromConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	h := streamHandler(os.Stdout, cfg.Format, ParseLevel(cfg.Level))
	if cfg.Sentry.DSN != "" {
		h = withSentry(cfg.Sentry, h)
	}
	return slog.New(NewLogHandlerDecorator(h, extractors...))
}

// streamHandler picks the text handler for "text" and JSON otherwise.
func streamHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Unknown values fall back to slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
