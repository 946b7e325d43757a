package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dumbdev/katal/pkg/container"
	"github.com/dumbdev/katal/pkg/logger"
)

// App owns the route registry, the middleware chain and the service
// container, and serves requests through the dispatch pipeline.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router       chi.Router
	registry     *Registry
	chain        *MiddlewareChain
	container    *container.Container
	errorHandler ErrorHandler
	healthConfig *healthConfig
	metrics      *metricsEndpoint
	logger       *slog.Logger
	handlers     []Handler
	routeFns     []func(Router)
	staticRoutes []staticRoute
	maxBodyBytes int64
	realIP       bool
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	app := katal.New(
//	    katal.WithLogger("api", middlewares.RequestIDExtractor()),
//	    katal.WithMiddleware(middlewares.RequestID(), middlewares.CORS()),
//	    katal.WithNamedMiddleware("auth", middlewares.Auth(authenticator)),
//	    katal.WithHandlers(handlers.NewUsers(repo)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:       chi.NewRouter(),
		registry:     NewRegistry(),
		chain:        NewMiddlewareChain(),
		logger:       logger.NewNope(),
		errorHandler: DefaultErrorHandler,
		maxBodyBytes: defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.container == nil {
		a.container = container.New()
	}

	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router serving infrastructure
// endpoints and falling through to the pipeline.
func (a *App) Router() chi.Router {
	return a.router
}

// Container returns the service container shared by all requests.
func (a *App) Container() *container.Container {
	return a.container
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Routes lists the registered routes in registration order.
func (a *App) Routes() []RouteInfo {
	return a.registry.Routes()
}

// Run starts an HTTP server and blocks until the context from WithContext
// is cancelled or the process receives SIGINT or SIGTERM. The container is
// closed after the user shutdown hooks.
//
//	err := app.Run(katal.Address(":8080"), katal.Logger(log))
func (a *App) Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	cfg.shutdownHooks = append(cfg.shutdownHooks, a.container.Close)
	return newLifecycle(a, cfg).run()
}

func (a *App) setupRoutes() {
	if a.realIP {
		a.router.Use(middleware.RealIP)
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, liveness)
		a.router.Get(a.healthConfig.readinessPath, a.healthConfig.readiness(a.logger))
	}

	if a.metrics != nil {
		a.router.Get(a.metrics.path, a.metrics.handler().ServeHTTP)
	}

	r := a.registry.Router()
	for _, h := range a.handlers {
		h.Routes(r)
	}
	for _, fn := range a.routeFns {
		fn(r)
	}

	for _, route := range a.registry.routes {
		for _, name := range route.middleware {
			if !a.chain.Has(name) {
				a.logger.Warn("route references unregistered middleware",
					slog.String("method", route.Method),
					slog.String("path", route.Path),
					slog.String("middleware", name),
				)
			}
		}
	}

	a.router.NotFound(a.serveDispatch)
	a.router.MethodNotAllowed(a.serveDispatch)
}

func (a *App) serveDispatch(w http.ResponseWriter, r *http.Request) {
	if a.maxBodyBytes > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxBodyBytes)
	}

	c := newContext(r, a.logger, a.container)
	res := a.Dispatch(c)
	if err := res.WriteTo(w); err != nil && !errors.Is(err, context.Canceled) {
		c.LogDebug("failed to write response", slog.Any("error", err))
	}
}

// Dispatch runs the pipeline for c and always returns a response:
//
//  1. global before hooks; a response here is returned as is
//  2. route match, route before hooks, validation, controller, route after hooks
//  3. global after hooks
//
// Failures and panics at any step go to the error handler and skip the
// remaining steps. Global done hooks then see the final response on every
// path.
func (a *App) Dispatch(c Context) *Response {
	res := a.dispatch(c)
	a.chain.RunGlobalDone(c, res)
	return res
}

func (a *App) dispatch(c Context) (res *Response) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			res = a.handleError(c, &PanicError{Value: v, Stack: debug.Stack()})
		}
	}()

	res, err := a.chain.RunGlobalBefore(c)
	if err != nil {
		return a.handleError(c, err)
	}
	if res != nil {
		return res
	}

	res, err = a.registry.Handle(c, a.chain)
	if err != nil {
		return a.handleError(c, err)
	}

	res, err = a.chain.RunGlobalAfter(c, res)
	if err != nil {
		return a.handleError(c, err)
	}
	return res
}

func (a *App) handleError(c Context, err error) *Response {
	if res := a.errorHandler(c, err); res != nil {
		return res
	}
	return ErrorResponseFor(err)
}
