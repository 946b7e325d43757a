package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Entry is a single log record in sink form.
type Entry struct {
	Time    time.Time
	Error   error
	Context map[string]any
	Message string
	Level   slog.Level
}

// Sink receives log entries. Implementations decide where they go
// (a file, a collector, a test buffer).
type Sink interface {
	Write(ctx context.Context, e Entry) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Entry) error

func (f SinkFunc) Write(ctx context.Context, e Entry) error {
	return f(ctx, e)
}

// sinkHandler turns slog records into Entry values.
type sinkHandler struct {
	sink   Sink
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewSinkHandler returns a slog.Handler that forwards records to sink.
// Attributes are flattened into Entry.Context using dotted group names.
// An attribute named "error" holding an error value becomes Entry.Error.
// A nil level means slog.LevelInfo.
func NewSinkHandler(sink Sink, level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &sinkHandler{sink: sink, level: level}
}

// NewWithSink creates a logger that writes to sink with optional context extractors.
func NewWithSink(sink Sink, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(NewSinkHandler(sink, slog.LevelInfo), extractors...))
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *sinkHandler) Handle(ctx context.Context, rec slog.Record) error {
	e := Entry{
		Time:    rec.Time,
		Level:   rec.Level,
		Message: rec.Message,
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	fields := make(map[string]any, len(h.attrs)+rec.NumAttrs())
	for _, a := range h.attrs {
		e.collect(fields, "", a)
	}
	prefix := groupPrefix(h.groups)
	rec.Attrs(func(a slog.Attr) bool {
		e.collect(fields, prefix, a)
		return true
	})
	if len(fields) > 0 {
		e.Context = fields
	}

	return h.sink.Write(ctx, e)
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefix := groupPrefix(h.groups)
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func (e *Entry) collect(fields map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			e.collect(fields, p, ga)
		}
		return
	}

	key := prefix + a.Key
	v := a.Value.Any()
	if err, ok := v.(error); ok && a.Key == "error" && e.Error == nil {
		e.Error = err
		return
	}
	fields[key] = v
}

func groupPrefix(groups []string) string {
	p := ""
	for _, g := range groups {
		p += g + "."
	}
	return p
}

// ErrorAttr is shorthand for slog.Any("error", err), the attribute the sink
// handler lifts into Entry.Error.
func ErrorAttr(err error) slog.Attr {
	return slog.Any("error", err)
}

// Fanout writes every entry to each sink in order and joins their errors.
func Fanout(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, e Entry) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Write(ctx, e); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
