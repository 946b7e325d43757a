package internal

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"time"

	"github.com/dumbdev/katal/pkg/container"
	"github.com/dumbdev/katal/pkg/logger"
)

// Context is the per-request view handed to hooks and handlers.
// It satisfies context.Context through the request context, so it can be
// passed directly to any blocking call.
type Context interface {
	context.Context

	// Request inputs.
	Request() *http.Request
	Context() context.Context
	Header(name string) string
	Cookie(name string) (string, error)

	// Route is nil until matching succeeds and stays nil on 404.
	Route() *Route

	// Param is "" for names the route pattern does not declare.
	Param(name string) string
	// Params copies the path parameters.
	Params() map[string]string

	Query(name string) string
	QueryDefault(name, defaultValue string) string
	QueryParams() url.Values

	// Body is the parsed payload: map[string]any (or another JSON value) for
	// JSON, map[string]any for forms, nil for anything else or on a parse
	// failure.
	Body() any

	// Set stores a request-scoped value visible to later hooks and through
	// Value. Get reads it back, nil when absent.
	Set(key any, value any)
	Get(key any) any

	Container() *container.Container
	Resolve(name string) (any, error)

	// Logging goes through the request context so extractors see it.
	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)
}

type requestContext struct {
	request   *http.Request
	logger    *slog.Logger
	container *container.Container
	route     *Route
	params    map[string]string
	query     url.Values
	body      any
}

func newContext(r *http.Request, log *slog.Logger, c *container.Container) *requestContext {
	return &requestContext{
		request:   r,
		logger:    log,
		container: c,
		query:     r.URL.Query(),
	}
}

// NewContext builds a Context for r outside of App dispatch, for tests and
// adapters. params may be nil.
func NewContext(r *http.Request, log *slog.Logger, c *container.Container, params map[string]string, body any) Context {
	if log == nil {
		log = logger.NewNope()
	}
	if c == nil {
		c = container.New()
	}
	ctx := newContext(r, log, c)
	ctx.params = params
	ctx.body = body
	return ctx
}

func (c *requestContext) bindRoute(route *Route, params map[string]string, body any) {
	c.route = route
	c.params = params
	c.body = body
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Route() *Route {
	return c.route
}

func (c *requestContext) Param(name string) string {
	return c.params[name]
}

func (c *requestContext) Params() map[string]string {
	if c.params == nil {
		return map[string]string{}
	}
	return maps.Clone(c.params)
}

func (c *requestContext) Query(name string) string {
	return c.query.Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.query.Get(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) QueryParams() url.Values {
	return c.query
}

func (c *requestContext) Body() any {
	return c.body
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) Cookie(name string) (string, error) {
	ck, err := c.request.Cookie(name)
	if err != nil {
		return "", fmt.Errorf("cookie %q: %w", name, err)
	}
	return ck.Value, nil
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Container() *container.Container {
	return c.container
}

func (c *requestContext) Resolve(name string) (any, error) {
	return c.container.Resolve(name)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) { c.log(slog.LevelDebug, msg, attrs) }
func (c *requestContext) LogInfo(msg string, attrs ...any) { c.log(slog.LevelInfo, msg, attrs) }
func (c *requestContext) LogWarn(msg string, attrs ...any) { c.log(slog.LevelWarn, msg, attrs) }
func (c *requestContext) LogError(msg string, attrs ...any) { c.log(slog.LevelError, msg, attrs) }

func (c *requestContext) log(level slog.Level, msg string, attrs []any) {
	c.logger.Log(c.request.Context(), level, msg, attrs...)
}
