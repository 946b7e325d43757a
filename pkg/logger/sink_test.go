package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/pkg/logger"
)

type memorySink struct {
	entries []logger.Entry
	mu      sync.Mutex
}

func (s *memorySink) Write(_ context.Context, e logger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

type ctxKey struct{}

func TestNewWithSink(t *testing.T) {
	t.Parallel()

	t.Run("maps record to entry", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		log := logger.NewWithSink(sink)

		boom := errors.New("boom")
		log.Error("request failed", slog.Int("status", 500), logger.ErrorAttr(boom))

		require.Len(t, sink.entries, 1)
		e := sink.entries[0]
		require.Equal(t, slog.LevelError, e.Level)
		require.Equal(t, "request failed", e.Message)
		require.ErrorIs(t, e.Error, boom)
		require.Equal(t, int64(500), e.Context["status"])
		require.NotContains(t, e.Context, "error")
		require.False(t, e.Time.IsZero())
	})

	t.Run("debug is filtered by default", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		logger.NewWithSink(sink).Debug("hidden")
		require.Empty(t, sink.entries)
	})

	t.Run("groups and static attrs are flattened", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		log := logger.NewWithSink(sink).With(slog.String("component", "api")).WithGroup("http")
		log.Info("done", slog.String("method", "GET"), slog.Group("route", slog.String("path", "/users")))

		require.Len(t, sink.entries, 1)
		require.Equal(t, map[string]any{
			"component":       "api",
			"http.method":     "GET",
			"http.route.path": "/users",
		}, sink.entries[0].Context)
	})

	t.Run("extractors add context values", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		log := logger.NewWithSink(sink, func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(ctxKey{}).(string)
			return slog.String("request_id", v), ok
		})

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "hello")

		require.Equal(t, "req-1", sink.entries[0].Context["request_id"])
	})
}

func TestFanout(t *testing.T) {
	t.Parallel()

	a, b := &memorySink{}, &memorySink{}
	failing := logger.SinkFunc(func(context.Context, logger.Entry) error {
		return errors.New("sink down")
	})

	err := logger.Fanout(a, failing, b).Write(context.Background(), logger.Entry{Message: "x"})
	require.EqualError(t, err, "sink down")
	require.Len(t, a.entries, 1)
	require.Len(t, b.entries, 1)
}
