package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/pkg/logger"
)

type requestIDKey struct{}

const maxRequestIDLength = 128

type requestIDConfig struct {
	generate func() string
	echo     string
	trusted  []string
}

// RequestIDOption tunes RequestID.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders replaces the inbound headers trusted to carry an
// upstream ID. They are tried in order. The default is X-Request-ID then
// X-Correlation-ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.trusted = headers
	}
}

// WithRequestIDGenerator replaces the UUIDv7 generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// WithRequestIDResponseHeader names the response header carrying the ID.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if header != "" {
			cfg.echo = header
		}
	}
}

// NewRequestID returns a time-ordered UUIDv7 string.
func NewRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// RequestID tags every request with an ID in the before phase and echoes
// it in the after phase. An upstream ID is reused when it is short printable
// ASCII, otherwise a fresh one is generated.
//
// Register it first so later hooks and log lines see the ID.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		trusted:  []string{"X-Request-ID", "X-Correlation-ID"},
		generate: NewRequestID,
		echo:     "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Middleware{
		Before: func(c internal.Context) (*internal.Response, error) {
			c.Set(requestIDKey{}, cfg.inbound(c))
			return nil, nil
		},
		After: func(c internal.Context, res *internal.Response) (*internal.Response, error) {
			if id := GetRequestID(c); id != "" {
				return res.Clone().SetHeader(cfg.echo, id), nil
			}
			return res, nil
		},
	}
}

func (cfg *requestIDConfig) inbound(c internal.Context) string {
	for _, h := range cfg.trusted {
		if v := c.Header(h); acceptableID(v) {
			return v
		}
	}
	return cfg.generate()
}

func acceptableID(v string) bool {
	if v == "" || len(v) > maxRequestIDLength {
		return false
	}
	for i := range len(v) {
		if v[i] < 0x21 || v[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the ID stored by RequestID, or "".
func GetRequestID(c internal.Context) string {
	id, _ := c.Get(requestIDKey{}).(string)
	return id
}

// RequestIDExtractor adds a request_id attribute to every log record whose
// context went through RequestID.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, _ := ctx.Value(requestIDKey{}).(string)
		if id == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", id), true
	}
}
