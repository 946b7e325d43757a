package internal

// Handler groups related routes. New calls Routes once per handler passed
// through WithHandlers.
//
//	type notes struct{ store *noteStore }
//
//	func (h *notes) Routes(r katal.Router) {
//	    r.Group("/notes", func(r katal.Router) {
//	        r.GET("/:id", h.show)
//	        r.POST("/", h.create, katal.WithValidation(noteSchema))
//	    }, katal.WithRouteMiddleware("auth"))
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc produces the route result. A *Response is sent unchanged.
// Any other value, nil included, is encoded as a 200 JSON body. An error
// goes to the ErrorHandler.
type HandlerFunc func(c Context) (any, error)

// BeforeFunc inspects the request ahead of the handler. A non-nil
// *Response short-circuits: the handler and the hooks after it in the same
// scope are skipped.
type BeforeFunc func(c Context) (*Response, error)

// AfterFunc may rewrite the outgoing response. nil keeps res.
// res can be a value the handler shares across requests, so clone it
// before changing headers or body.
type AfterFunc func(c Context, res *Response) (*Response, error)

// DoneFunc observes the response that is about to be written, including
// the ones built by the error handler. It must not modify res.
type DoneFunc func(c Context, res *Response)

// Middleware bundles an optional before hook with an optional after hook.
// Registered globally it wraps every request. Registered by name it wraps
// only routes that list it with WithRouteMiddleware.
//
// Before and after hooks of a chain both run in registration order.
//
//	poweredBy := katal.Middleware{
//	    After: func(c katal.Context, res *katal.Response) (*katal.Response, error) {
//	        return res.Clone().SetHeader("X-Powered-By", "katal"), nil
//	    },
//	}
type Middleware struct {
	Before BeforeFunc
	After  AfterFunc
	// Done runs once per request after everything else, even when a step
	// failed or panicked. Only global middleware done hooks run.
	Done DoneFunc
}

// ErrorHandler maps an error or recovered panic to the response sent.
type ErrorHandler func(c Context, err error) *Response
