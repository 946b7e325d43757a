package internal

import (
	"github.com/dumbdev/katal/pkg/validator"
)

// Controller bundles a handler with optional lifecycle hooks.
//
// BeforeHandle may return a response to skip Handle and AfterHandle.
// AfterHandle receives the result of Handle and returns the value that
// becomes the response.
//
// Example:
//
//	r.Handle(http.MethodGet, "/reports/:id", katal.Controller{
//	    BeforeHandle: requireOwner,
//	    Handle:       showReport,
//	    AfterHandle: func(c katal.Context, v any) (any, error) {
//	        return katal.Success(v), nil
//	    },
//	})
type Controller struct {
	BeforeHandle BeforeFunc
	Handle       HandlerFunc
	AfterHandle  func(c Context, result any) (any, error)
}

// Run executes the lifecycle: BeforeHandle, Handle, AfterHandle.
func (ctrl Controller) Run(c Context) (any, error) {
	if ctrl.BeforeHandle != nil {
		res, err := ctrl.BeforeHandle(c)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}

	result, err := ctrl.Handle(c)
	if err != nil {
		return nil, err
	}

	if ctrl.AfterHandle != nil {
		return ctrl.AfterHandle(c, result)
	}
	return result, nil
}

// handle validates the body when the route has a schema, then runs the
// controller. A failed validation never reaches the controller.
func (r *Route) handle(c Context) (*Response, error) {
	if r.schema != nil {
		if result := validator.Validate(c.Body(), r.schema); !result.Valid {
			return ValidationFailed(result.Errors), nil
		}
	}

	v, err := r.controller.Run(c)
	if err != nil {
		return nil, err
	}
	return toResponse(v), nil
}
