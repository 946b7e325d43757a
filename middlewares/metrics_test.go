package middlewares_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/middlewares"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := middlewares.NewHTTPMetrics("test", reg)
	require.NoError(t, err)

	again, err := middlewares.NewHTTPMetrics("test", reg)
	require.NoError(t, err, "collectors are reused")
	require.NotNil(t, again)

	app := newApp(
		internal.WithMiddleware(middlewares.Metrics(m)),
		internal.WithMetricsEndpoint("/metrics", reg),
		internal.WithRoutes(failingRoutes),
	)

	do(app, http.MethodGet, "/items/1", nil)
	do(app, http.MethodGet, "/items/2", nil)
	do(app, http.MethodGet, "/nowhere", nil)
	require.Equal(t, http.StatusInternalServerError, do(app, http.MethodGet, "/boom", nil).Code)
	require.Equal(t, http.StatusInternalServerError, do(app, http.MethodGet, "/panic", nil).Code)

	w := do(app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, `test_http_requests_total{method="GET",route="/items/:id",status="200"} 2`)
	require.Contains(t, body, `test_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	require.Contains(t, body, `test_http_request_duration_seconds_count{method="GET",route="/items/:id"} 2`)
	require.Contains(t, body, `test_http_requests_total{method="GET",route="/boom",status="500"} 1`)
	require.Contains(t, body, `test_http_requests_total{method="GET",route="/panic",status="500"} 1`)
	require.NotContains(t, body, `route="/metrics"`, "infrastructure endpoints bypass the pipeline")
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	app := newApp(
		internal.WithCustomLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
		internal.WithMiddleware(middlewares.AccessLog()),
		internal.WithRoutes(failingRoutes),
	)

	do(app, http.MethodGet, "/items/9", nil)
	do(app, http.MethodGet, "/nowhere", nil)
	do(app, http.MethodGet, "/boom", nil)

	// The error handler writes its own line for /boom; keep the access lines.
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "request completed" {
			entries = append(entries, entry)
		}
	}
	require.Len(t, entries, 3)
	ok, missing, failed := entries[0], entries[1], entries[2]

	require.Equal(t, "INFO", ok["level"])
	require.Equal(t, "/items/:id", ok["route"])
	require.Equal(t, "/items/9", ok["path"])
	require.EqualValues(t, 200, ok["status"])
	require.Equal(t, "192.0.2.1", ok["remote_ip"])
	require.Contains(t, ok, "duration")

	require.Equal(t, "WARN", missing["level"])
	require.EqualValues(t, 404, missing["status"])
	require.NotContains(t, missing, "route")

	require.Equal(t, "ERROR", failed["level"])
	require.EqualValues(t, 500, failed["status"])
	require.Equal(t, "/boom", failed["route"])
}

// failingRoutes adds GET /boom, which returns an error, and GET /panic.
func failingRoutes(r internal.Router) {
	r.GET("/boom", func(internal.Context) (any, error) {
		return nil, errors.New("storage offline")
	})
	r.GET("/panic", func(internal.Context) (any, error) {
		panic("nil map")
	})
}
