package katal

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/pkg/container"
	"github.com/dumbdev/katal/pkg/logger"
	"github.com/dumbdev/katal/pkg/validator"
)

// Type aliases - public API
type (
	// App owns the route registry, the middleware chain and the service
	// container. It is an http.Handler.
	App = internal.App

	// Context provides request access, parsed body, params and services.
	Context = internal.Context

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Controller bundles a handler with optional BeforeHandle and
	// AfterHandle steps.
	Controller = internal.Controller

	// Middleware is a pair of optional before and after hooks.
	Middleware = internal.Middleware

	// BeforeFunc runs before the route handler. A non-nil response ends
	// the current phase.
	BeforeFunc = internal.BeforeFunc

	// AfterFunc transforms the response produced so far.
	AfterFunc = internal.AfterFunc

	// DoneFunc observes the final response on every path, errors included.
	DoneFunc = internal.DoneFunc

	// ErrorHandler turns an error or recovered panic into a response.
	ErrorHandler = internal.ErrorHandler

	// Response is the status, headers and body threaded through the pipeline.
	Response = internal.Response

	// Route is a registered route.
	Route = internal.Route

	// RouteInfo describes a registered route for introspection.
	RouteInfo = internal.RouteInfo

	// RouteOption configures a route or a group.
	RouteOption = internal.RouteOption

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// ServerConfig is the loadable part of the server runtime.
	ServerConfig = internal.ServerConfig

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// CheckFunc is a readiness check.
	CheckFunc = internal.CheckFunc

	// HTTPError is an error carrying an HTTP status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// PanicError wraps a value recovered from a panic during dispatch.
	PanicError = internal.PanicError

	// MiddlewareNotFoundError reports a route referencing an unregistered
	// named middleware.
	MiddlewareNotFoundError = internal.MiddlewareNotFoundError

	// RouteNotFoundError reports a request that no route matches.
	RouteNotFoundError = internal.RouteNotFoundError

	// Extractor pulls a string from a request using ordered sources.
	Extractor = internal.Extractor

	// ExtractorSource is one place an Extractor looks.
	ExtractorSource = internal.ExtractorSource

	// Scalar constrains the typed Param and Query helpers.
	Scalar = internal.Scalar

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Container is the named service container.
	Container = container.Container

	// Factory builds a service for the container.
	Factory = container.Factory

	// Schema maps field names to validation rules.
	Schema = validator.Schema

	// Rule describes the constraints on one field.
	Rule = validator.Rule

	// ValidationErrors is a collection of field validation errors.
	ValidationErrors = validator.ValidationErrors
)

// Field types for Rule.Type.
const (
	TypeString  = validator.TypeString
	TypeNumber  = validator.TypeNumber
	TypeBoolean = validator.TypeBoolean
	TypeEmail   = validator.TypeEmail
	TypeURL     = validator.TypeURL
	TypeArray   = validator.TypeArray
	TypeObject  = validator.TypeObject
)

// ErrStartupHook wraps a startup hook failure.
var ErrStartupHook = internal.ErrStartupHook

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	app := katal.New(
//	    katal.WithLogger("api", middlewares.RequestIDExtractor()),
//	    katal.WithMiddleware(middlewares.RequestID(), middlewares.CORS()),
//	    katal.WithNamedMiddleware("auth", middlewares.Auth(jwtAuth)),
//	    katal.WithHandlers(handlers.NewUsers(repo)),
//	)
//
//	err := app.Run(katal.Address(":8080"))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewContainer creates an empty service container.
func NewContainer() *Container {
	return container.New()
}

// NewExtractor returns an Extractor trying sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// App options

// WithMiddleware appends global middleware. Hooks run in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithNamedMiddleware registers middleware that routes opt into with
// WithRouteMiddleware.
func WithNamedMiddleware(name string, mw Middleware) Option {
	return internal.WithNamedMiddleware(name, mw)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutes registers routes with a plain function.
func WithRoutes(fn func(r Router)) Option {
	return internal.WithRoutes(fn)
}

// WithContainer uses c instead of a fresh container.
func WithContainer(c *Container) Option {
	return internal.WithContainer(c)
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithMaxBodySize caps how much of a request body is parsed.
func WithMaxBodySize(n int64) Option {
	return internal.WithMaxBodySize(n)
}

// WithRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For.
// Only enable it behind a trusted proxy.
func WithRealIP() Option {
	return internal.WithRealIP()
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Static files bypass the pipeline.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	katal.New(
//	    katal.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	katal.WithHealthChecks(
//	    katal.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetricsEndpoint serves Prometheus metrics from g at path.
func WithMetricsEndpoint(path string, g prometheus.Gatherer) Option {
	return internal.WithMetricsEndpoint(path, g)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	katal.New(
//	    katal.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Route options

// WithRouteMiddleware attaches named middleware to a route or group.
func WithRouteMiddleware(names ...string) RouteOption {
	return internal.WithRouteMiddleware(names...)
}

// WithValidation validates the parsed body against schema before the
// handler runs.
func WithValidation(schema Schema) RouteOption {
	return internal.WithValidation(schema)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithHealthTimeout bounds the whole readiness probe.
func WithHealthTimeout(d time.Duration) HealthOption {
	return internal.WithHealthTimeout(d)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Listener serves on ln instead of listening on the address.
func Listener(ln net.Listener) RunOption {
	return internal.Listener(ln)
}

// WithServerConfig applies a loaded ServerConfig.
func WithServerConfig(sc ServerConfig) RunOption {
	return internal.WithServerConfig(sc)
}

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the listener opens.
// A failing hook stops Run and no shutdown hook runs.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	katal.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Context helpers

// ContextValue retrieves a typed value stored with Context.Set.
// Returns the zero value of T if the key is not found or type assertion fails.
//
// Example:
//
//	type tenantKey struct{}
//
//	tenant := katal.ContextValue[string](c, tenantKey{})
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a path parameter converted to T. Conversion failures
// yield the zero value.
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a query parameter converted to T.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a query parameter converted to T, or def when it is
// missing or malformed.
func QueryDefault[T Scalar](c Context, name string, def T) T {
	return internal.QueryDefault(c, name, def)
}

// BodyMap returns the parsed body as a map, or nil when it is not an object.
func BodyMap(c Context) map[string]any {
	return internal.BodyMap(c)
}

// Service resolves a named service from the request's container.
//
// Example:
//
//	repo, err := katal.Service[*UserRepo](c, "users")
func Service[T any](c Context, name string) (T, error) {
	return internal.Service[T](c, name)
}

// WrapHTTP adapts a standard http.Handler into a HandlerFunc.
func WrapHTTP(h http.Handler) HandlerFunc {
	return internal.WrapHTTP(h)
}

// Extractor sources

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// FromCookie reads a cookie value.
func FromCookie(name string) ExtractorSource {
	return internal.FromCookie(name)
}

// FromParam reads a path parameter.
func FromParam(name string) ExtractorSource {
	return internal.FromParam(name)
}

// FromBody reads a string field from the parsed body.
func FromBody(field string) ExtractorSource {
	return internal.FromBody(field)
}

// FromBearerToken reads the token from an "Authorization: Bearer" header.
func FromBearerToken() ExtractorSource {
	return internal.FromBearerToken()
}

// Responses

// NewResponse creates a response with a raw body.
func NewResponse(status int, body []byte) *Response {
	return internal.NewResponse(status, body)
}

// JSON encodes v as the response body.
func JSON(status int, v any) *Response {
	return internal.JSON(status, v)
}

// Success wraps data in the success envelope.
func Success(data any, message ...string) *Response {
	return internal.Success(data, message...)
}

// Fail builds the failure envelope.
func Fail(status int, message string, errs any) *Response {
	return internal.Fail(status, message, errs)
}

// ValidationFailed builds the 422 validation envelope.
func ValidationFailed(errs ValidationErrors) *Response {
	return internal.ValidationFailed(errs)
}

// NotFound builds the 404 envelope for path.
func NotFound(path string) *Response {
	return internal.NotFound(path)
}

// ErrorResponse builds the error envelope with the status text.
func ErrorResponse(status int, message string) *Response {
	return internal.ErrorResponse(status, message)
}

// Redirect responds with a Location header.
func Redirect(status int, url string) *Response {
	return internal.Redirect(status, url)
}

// Text responds with plain text.
func Text(status int, s string) *Response {
	return internal.Text(status, s)
}

// HTML responds with an HTML string.
func HTML(status int, s string) *Response {
	return internal.HTML(status, s)
}

// NoContent responds with an empty body.
func NoContent(status int) *Response {
	return internal.NoContent(status)
}

// Errors

// NewHTTPError creates an error that renders with the given status.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithErrorCode sets a machine readable code on an HTTPError.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithError attaches an underlying error to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrTooManyRequests(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsPanicError reports whether err is a recovered panic.
func IsPanicError(err error) bool {
	return internal.IsPanicError(err)
}

// IsMiddlewareNotFound reports whether err is a MiddlewareNotFoundError.
func IsMiddlewareNotFound(err error) bool {
	return internal.IsMiddlewareNotFound(err)
}

// IsRouteNotFound reports whether err is a RouteNotFoundError.
func IsRouteNotFound(err error) bool {
	return internal.IsRouteNotFound(err)
}

// DefaultErrorHandler renders errors as the JSON error envelope.
// Custom handlers can fall back to it.
func DefaultErrorHandler(c Context, err error) *Response {
	return internal.DefaultErrorHandler(c, err)
}
