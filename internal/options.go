package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dumbdev/katal/pkg/container"
	"github.com/dumbdev/katal/pkg/logger"
)

// Option adjusts an App while New builds it.
type Option func(*App)

// WithMiddleware adds global middleware. Hooks run in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		for _, m := range mw {
			a.chain.AddGlobal(m)
		}
	}
}

// WithNamedMiddleware registers middleware that routes opt into with
// WithRouteMiddleware(name).
//
// Example:
//
//	katal.New(
//	    katal.WithNamedMiddleware("auth", middlewares.Auth(jwtAuth)),
//	    katal.WithRoutes(func(r katal.Router) {
//	        r.GET("/me", me, katal.WithRouteMiddleware("auth"))
//	    }),
//	)
func WithNamedMiddleware(name string, mw Middleware) Option {
	return func(a *App) {
		a.chain.Register(name, mw)
	}
}

// WithHandlers queues handlers whose Routes methods New calls in order.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutes registers routes declared by fn. It runs after WithHandlers.
func WithRoutes(fn func(r Router)) Option {
	return func(a *App) {
		if fn != nil {
			a.routeFns = append(a.routeFns, fn)
		}
	}
}

// WithContainer sets the service container. By default each App gets an
// empty one.
func WithContainer(c *container.Container) Option {
	return func(a *App) {
		if c != nil {
			a.container = c
		}
	}
}

// WithErrorHandler sets how handler and middleware failures become
// responses. A nil result from h falls back to the default mapping.
//
// Example:
//
//	katal.WithErrorHandler(func(c katal.Context, err error) *katal.Response {
//	    if errors.Is(err, sql.ErrNoRows) {
//	        return katal.ErrorResponse(http.StatusNotFound, "not found")
//	    }
//	    return katal.DefaultErrorHandler(c, err)
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithMaxBodySize limits request bodies. Larger bodies are treated as
// unparsable. Zero disables the limit. Defaults to 10MB.
func WithMaxBodySize(n int64) Option {
	return func(a *App) {
		a.maxBodyBytes = n
	}
}

// WithRealIP sets RemoteAddr from X-Real-IP or X-Forwarded-For.
// Enable only behind a trusted proxy.
func WithRealIP() Option {
	return func(a *App) {
		a.realIP = true
	}
}

// WithStaticFiles serves subDir of fsys under pattern, outside the
// dispatch pipeline. Directory paths answer 404. It panics when subDir is
// not a valid path in fsys.
//
//	//go:embed public
//	var assets embed.FS
//
//	katal.New(
//	    katal.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		root, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(fmt.Sprintf("katal: static files %q: %v", subDir, err))
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(root))

		a.staticRoutes = append(a.staticRoutes, staticRoute{
			pattern: pattern,
			handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasSuffix(r.URL.Path, "/") {
					http.NotFound(w, r)
					return
				}
				h := w.Header()
				h.Set("Cache-Control", "public, max-age=3600")
				h.Set("X-Content-Type-Options", "nosniff")
				files.ServeHTTP(w, r)
			}),
		})
	}
}

// WithHealthChecks mounts a liveness probe that always answers 200 and a
// readiness probe that answers 503 when any registered check fails. Both
// are served outside the dispatch pipeline.
//
//	katal.WithHealthChecks(
//	    katal.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		a.healthConfig = newHealthConfig(opts)
	}
}

// WithMetricsEndpoint serves Prometheus metrics from g at path.
// An empty path selects "/metrics"; a nil gatherer selects the default registry.
func WithMetricsEndpoint(path string, g prometheus.Gatherer) Option {
	return func(a *App) {
		if path == "" {
			path = defaultMetricsPath
		}
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		a.metrics = &metricsEndpoint{path: path, gatherer: g}
	}
}

// WithLogger logs JSON to stdout with a "component" attribute on every
// record. Extractors add request-scoped attributes such as request_id.
//
//	katal.New(
//	    katal.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger uses l as is. nil keeps the current logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
