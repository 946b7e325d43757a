// Package internal provides the core types and implementation for katal.
//
// This package is internal and should not be used directly. Import
// "github.com/dumbdev/katal" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: owns the registry, the middleware chain and the container
//   - Context: per-request access to params, query, parsed body and services
//   - Router: registration surface with groups and route options
//   - Controller: BeforeHandle, Handle and AfterHandle lifecycle
//   - Middleware: optional Before and After hooks, global or named
//   - Response: status, headers and body threaded through the pipeline
//
// # Pipeline
//
// Every request that is not an infrastructure endpoint (health, metrics,
// static files) goes through App.Dispatch:
//
//	global before -> match -> route before -> validate -> controller -> route after -> global after
//
// A global before hook returning a response ends dispatch; the global after
// hooks do not run. A route before hook returning a response skips the
// controller and the route after hooks, but global after hooks still run.
// Unmatched requests get a 404 envelope which also passes through global
// after hooks. Errors and panics from any step go to the ErrorHandler.
// Global done hooks run last on every path and see the response that is
// written, so request counters and access logs include failures.
//
// Before and after hooks both run in registration order:
//
//	app := internal.New(
//	    internal.WithMiddleware(first, second),
//	    internal.WithNamedMiddleware("auth", auth),
//	    internal.WithRoutes(func(r internal.Router) {
//	        r.Group("/api", func(r internal.Router) {
//	            r.GET("/me", me)
//	        }, internal.WithRouteMiddleware("auth"))
//	    }),
//	)
//
// # Routes
//
// Paths are split on "/" and empty segments dropped, so "//users/" and
// "/users" are the same route. A ":name" segment captures one segment.
// The first registered route that matches wins.
//
// Groups concatenate prefixes and named middleware from the outside in.
// A schema given to an inner group or route replaces the outer one.
//
// # Bodies and Validation
//
// The body is parsed once per matched request by media type: JSON values,
// urlencoded and multipart forms become maps. Routes with a schema validate
// the parsed body and answer 422 without calling the controller:
//
//	{"success":false,"message":"Validation failed","errors":[{"field":"age","message":"age is required"}]}
//
// # Handler Results
//
// A handler returns (any, error). A *Response is used as is; any other
// value is encoded as JSON with status 200. Use Success, Fail, JSON, Text,
// HTML, Redirect and NoContent to build responses.
package internal
