// Package katal is a small HTTP request pipeline: a route registry with
// groups and path parameters, global and named middleware with before and
// after hooks, declarative body validation and a named service container.
//
// # Quick Start
//
// Create an application with katal.New, configure it with options and call
// Run to start the HTTP server:
//
//	app := katal.New(
//	    katal.WithLogger("api", middlewares.RequestIDExtractor()),
//	    katal.WithMiddleware(middlewares.RequestID(), middlewares.AccessLog()),
//	    katal.WithNamedMiddleware("auth", middlewares.Auth(jwtAuth)),
//	    katal.WithHandlers(handlers.NewUsers(repo)),
//	)
//
//	if err := app.Run(katal.Address(":8080")); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes. A handler
// returns any value; a *Response is sent as is, anything else is encoded
// as JSON with status 200:
//
//	type UsersHandler struct{}
//
//	func (h *UsersHandler) Routes(r katal.Router) {
//	    r.Group("/users", func(r katal.Router) {
//	        r.GET("/:id", h.show)
//	        r.POST("/", h.create, katal.WithValidation(userSchema))
//	    }, katal.WithRouteMiddleware("auth"))
//	}
//
//	func (h *UsersHandler) show(c katal.Context) (any, error) {
//	    id := katal.Param[int](c, "id")
//	    ...
//	}
//
// # Middleware
//
// A [Middleware] is a pair of optional hooks. Before hooks run in
// registration order and may answer the request by returning a response.
// After hooks run in the same order and may replace the response:
//
//	timing := katal.Middleware{
//	    After: func(c katal.Context, res *katal.Response) (*katal.Response, error) {
//	        return res.Clone().SetHeader("X-Served-By", "katal"), nil
//	    },
//	}
//
// Global middleware wraps every request. Named middleware runs only on
// routes that reference it with [WithRouteMiddleware]. Ready-made
// middleware lives in the middlewares package.
//
// # Services
//
// Services are registered on a [Container] by name and resolved per
// request with [Service]:
//
//	c := katal.NewContainer()
//	c.Singleton("users", func(*katal.Container) (any, error) { return repo, nil })
//
//	app := katal.New(katal.WithContainer(c))
//
// Singletons implementing io.Closer or Shutdown(context.Context) error are
// closed when the server stops.
//
// # Shutdown
//
// Run handles SIGINT and SIGTERM for graceful shutdown. Register cleanup
// functions with [ShutdownHook]:
//
//	app.Run(
//	    katal.ShutdownHook(redis.Shutdown(client)),
//	)
package katal
