package internal

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dumbdev/katal/pkg/validator"
)

// Router is the interface handlers use to declare routes.
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, opts ...RouteOption)

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, opts ...RouteOption)

	// PUT registers a handler for PUT requests.
	PUT(path string, h HandlerFunc, opts ...RouteOption)

	// PATCH registers a handler for PATCH requests.
	PATCH(path string, h HandlerFunc, opts ...RouteOption)

	// DELETE registers a handler for DELETE requests.
	DELETE(path string, h HandlerFunc, opts ...RouteOption)

	// HEAD registers a handler for HEAD requests.
	HEAD(path string, h HandlerFunc, opts ...RouteOption)

	// OPTIONS registers a handler for OPTIONS requests.
	OPTIONS(path string, h HandlerFunc, opts ...RouteOption)

	// Handle registers a controller with lifecycle hooks.
	Handle(method, path string, ctrl Controller, opts ...RouteOption)

	// Group registers the routes declared in fn under prefix.
	// Group options apply to every route inside, after the options of
	// enclosing groups.
	Group(prefix string, fn func(r Router), opts ...RouteOption)
}

// RouteOption configures a route or a group.
type RouteOption func(*routeScope)

// WithRouteMiddleware applies named middleware. Names accumulate from the
// outermost group to the route itself.
func WithRouteMiddleware(names ...string) RouteOption {
	return func(s *routeScope) {
		s.middleware = append(s.middleware, names...)
	}
}

// WithValidation validates the parsed request body against schema before
// the controller runs. An inner schema replaces an outer one. Registering a
// route whose schema fails validator.Schema.Check panics.
func WithValidation(schema validator.Schema) RouteOption {
	return func(s *routeScope) {
		s.schema = schema
	}
}

// routeScope is the registration state accumulated from enclosing groups.
type routeScope struct {
	schema     validator.Schema
	prefix     string
	middleware []string
}

// extend returns the scope for a nested group or route: prefixes and
// middleware concatenate parent first, a child schema wins.
func (s routeScope) extend(prefix string, opts []RouteOption) routeScope {
	var delta routeScope
	for _, opt := range opts {
		opt(&delta)
	}

	child := routeScope{
		prefix:     joinPath(s.prefix, prefix),
		middleware: append(slices.Clone(s.middleware), delta.middleware...),
		schema:     s.schema,
	}
	if delta.schema != nil {
		child.schema = delta.schema
	}
	return child
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")
}

// groupRouter registers routes into a Registry within a scope.
type groupRouter struct {
	registry *Registry
	scope    routeScope
}

func (r *groupRouter) GET(path string, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodGet, path, Controller{Handle: h}, opts...)
}

func (r *groupRouter) POST(path string, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodPost, path, Controller{Handle: h}, opts...)
}

func (r *groupRouter) PUT(path string, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodPut, path, Controller{Handle: h}, opts...)
}

func (r *groupRouter) PATCH(path string, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodPatch, path, Controller{Handle: h}, opts...)
}

func (r *groupRouter) DELETE(path string, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodDelete, path, Controller{Handle: h}, opts...)
}

func (r *groupRouter) HEAD(path string, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodHead, path, Controller{Handle: h}, opts...)
}

func (r *groupRouter) OPTIONS(path string, h HandlerFunc, opts ...RouteOption) {
	r.Handle(http.MethodOptions, path, Controller{Handle: h}, opts...)
}

func (r *groupRouter) Handle(method, path string, ctrl Controller, opts ...RouteOption) {
	if ctrl.Handle == nil {
		panic("katal: route " + method + " " + path + " has no Handle function")
	}
	s := r.scope.extend(path, opts)
	if err := s.schema.Check(); err != nil {
		panic("katal: route " + method + " " + s.prefix + ": " + err.Error())
	}
	r.registry.Add(newRoute(method, s.prefix, ctrl, s.middleware, s.schema))
}

func (r *groupRouter) Group(prefix string, fn func(Router), opts ...RouteOption) {
	fn(&groupRouter{registry: r.registry, scope: r.scope.extend(prefix, opts)})
}

// Registry stores routes in registration order and dispatches requests.
type Registry struct {
	routes []*Route
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Router returns the registration surface rooted at "/".
func (r *Registry) Router() Router {
	return &groupRouter{registry: r}
}

// Add appends a route. When two routes match the same request the one
// added first wins.
func (r *Registry) Add(route *Route) {
	r.routes = append(r.routes, route)
}

// Match finds the first route for method whose pattern matches path.
func (r *Registry) Match(method, path string) (*Route, bool) {
	path = normalizePath(path)
	method = strings.ToUpper(method)
	for _, route := range r.routes {
		if route.Method == method && route.Matches(path) {
			return route, true
		}
	}
	return nil, false
}

// Lookup is Match with a *RouteNotFoundError on a miss.
func (r *Registry) Lookup(method, path string) (*Route, error) {
	if route, ok := r.Match(method, path); ok {
		return route, nil
	}
	return nil, &RouteNotFoundError{Method: method, Path: path}
}

// RouteNotFoundError reports a request no route matches. Handle answers it
// with the 404 envelope instead of returning it.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("katal: no route for %s %s", e.Method, e.Path)
}

// IsRouteNotFound reports whether err is or wraps a *RouteNotFoundError.
func IsRouteNotFound(err error) bool {
	var target *RouteNotFoundError
	return errors.As(err, &target)
}

// Routes lists the registered routes in registration order.
func (r *Registry) Routes() []RouteInfo {
	out := make([]RouteInfo, len(r.routes))
	for i, route := range r.routes {
		out[i] = route.info()
	}
	return out
}

// Handle matches the request, binds params and body into c, then runs
// route before hooks, the route handler and route after hooks.
// A request with no matching route gets the 404 envelope.
func (r *Registry) Handle(c Context, chain *MiddlewareChain) (*Response, error) {
	req := c.Request()
	path := normalizePath(req.URL.Path)

	route, err := r.Lookup(req.Method, path)
	if IsRouteNotFound(err) {
		return NotFound(req.URL.Path), nil
	}

	if b, ok := c.(routeBinder); ok {
		b.bindRoute(route, route.ExtractParams(path), parseBody(c))
	}

	res, err := chain.RunRouteBefore(c, route.middleware)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	res, err = route.handle(c)
	if err != nil {
		return nil, err
	}
	return chain.RunRouteAfter(c, res, route.middleware)
}

// routeBinder is implemented by contexts that accept match results.
type routeBinder interface {
	bindRoute(route *Route, params map[string]string, body any)
}
