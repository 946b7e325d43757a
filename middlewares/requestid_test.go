package middlewares_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/middlewares"
	"github.com/dumbdev/katal/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a UUIDv7 when not present", func(t *testing.T) {
		t.Parallel()

		app := newApp(internal.WithMiddleware(middlewares.RequestID()))
		w := do(app, http.MethodGet, "/ok", nil)

		id, err := uuid.Parse(w.Header().Get("X-Request-ID"))
		require.NoError(t, err)
		require.Equal(t, uuid.Version(7), id.Version())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		t.Parallel()

		app := newApp(internal.WithMiddleware(middlewares.RequestID()))

		w := do(app, http.MethodGet, "/ok", map[string]string{"X-Request-ID": "existing-123"})
		require.Equal(t, "existing-123", w.Header().Get("X-Request-ID"))

		w = do(app, http.MethodGet, "/ok", map[string]string{"X-Correlation-ID": "corr-9"})
		require.Equal(t, "corr-9", w.Header().Get("X-Request-ID"))
	})

	t.Run("unacceptable incoming ids are replaced", func(t *testing.T) {
		t.Parallel()

		app := newApp(internal.WithMiddleware(middlewares.RequestID()))
		for _, bad := range []string{strings.Repeat("x", 500), "two words", "caf\u00e9"} {
			w := do(app, http.MethodGet, "/ok", map[string]string{"X-Request-ID": bad})
			require.NotEqual(t, bad, w.Header().Get("X-Request-ID"))
			require.NotEmpty(t, w.Header().Get("X-Request-ID"))
		}
	})

	t.Run("custom generator and header", func(t *testing.T) {
		t.Parallel()

		app := newApp(internal.WithMiddleware(middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace-ID"),
			middlewares.WithRequestIDHeaders("X-Trace-ID"),
		)))

		w := do(app, http.MethodGet, "/ok", map[string]string{"X-Request-ID": "ignored"})
		require.Equal(t, "fixed", w.Header().Get("X-Trace-ID"))
		require.Empty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("handlers see the stored ID", func(t *testing.T) {
		t.Parallel()

		var seen string
		app := internal.New(
			internal.WithMiddleware(middlewares.RequestID()),
			internal.WithRoutes(func(r internal.Router) {
				r.GET("/", func(c internal.Context) (any, error) {
					seen = middlewares.GetRequestID(c)
					return nil, nil
				})
			}),
		)

		w := do(app, http.MethodGet, "/", nil)
		require.NotEmpty(t, seen)
		require.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("GetRequestID without middleware", func(t *testing.T) {
		t.Parallel()

		require.Empty(t, middlewares.GetRequestID(newContext(http.MethodGet, "/", nil)))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	t.Run("log lines carry the request id", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(logger.NewLogHandlerDecorator(
			slog.NewJSONHandler(&buf, nil),
			middlewares.RequestIDExtractor(),
		))

		app := internal.New(
			internal.WithCustomLogger(log),
			internal.WithMiddleware(middlewares.RequestID()),
			internal.WithRoutes(func(r internal.Router) {
				r.GET("/", func(c internal.Context) (any, error) {
					c.LogInfo("handling")
					return nil, nil
				})
			}),
		)

		do(app, http.MethodGet, "/", map[string]string{"X-Request-ID": "req-42"})

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "handling", line["msg"])
		require.Equal(t, "req-42", line["request_id"])
	})

	t.Run("no attribute without an id", func(t *testing.T) {
		t.Parallel()

		_, ok := middlewares.RequestIDExtractor()(t.Context())
		require.False(t, ok)
	})
}
