package internal

import (
	"errors"
	"fmt"
	"log/slog"
)

// MiddlewareNotFoundError is returned when a route references a middleware
// name that was never registered.
type MiddlewareNotFoundError struct {
	Name string
}

func (e *MiddlewareNotFoundError) Error() string {
	return fmt.Sprintf("middleware %q is not registered", e.Name)
}

// IsMiddlewareNotFound reports whether err is a *MiddlewareNotFoundError.
func IsMiddlewareNotFound(err error) bool {
	return AsMiddlewareNotFound(err) != nil
}

// AsMiddlewareNotFound extracts a *MiddlewareNotFoundError from err.
func AsMiddlewareNotFound(err error) *MiddlewareNotFoundError {
	var target *MiddlewareNotFoundError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// MiddlewareChain holds global and named middleware and runs their hooks.
// It is filled during App construction and only read while serving.
type MiddlewareChain struct {
	named  map[string]Middleware
	global []Middleware
}

// NewMiddlewareChain creates an empty chain.
func NewMiddlewareChain() *MiddlewareChain {
	return &MiddlewareChain{named: make(map[string]Middleware)}
}

// AddGlobal appends middleware that runs on every request.
func (m *MiddlewareChain) AddGlobal(mw Middleware) {
	m.global = append(m.global, mw)
}

// Register stores middleware under name. Registering a name again
// replaces the previous middleware.
func (m *MiddlewareChain) Register(name string, mw Middleware) {
	m.named[name] = mw
}

// Has reports whether name is registered.
func (m *MiddlewareChain) Has(name string) bool {
	_, ok := m.named[name]
	return ok
}

// RunGlobalBefore runs global before hooks in order and returns the first
// non-nil response.
func (m *MiddlewareChain) RunGlobalBefore(c Context) (*Response, error) {
	return runBefore(c, m.global)
}

// RunGlobalAfter threads res through every global after hook in order.
func (m *MiddlewareChain) RunGlobalAfter(c Context, res *Response) (*Response, error) {
	return runAfter(c, res, m.global)
}

// RunGlobalDone hands the final response to every global done hook in
// order. A panicking hook is logged and the rest still run.
func (m *MiddlewareChain) RunGlobalDone(c Context, res *Response) {
	for _, mw := range m.global {
		if mw.Done != nil {
			runDone(c, res, mw.Done)
		}
	}
}

func runDone(c Context, res *Response, fn DoneFunc) {
	defer func() {
		if v := recover(); v != nil {
			c.LogError("done hook panicked", slog.Any("panic", v))
		}
	}()
	fn(c, res)
}

// RunRouteBefore resolves names and runs their before hooks in the order
// given. An unknown name fails before any hook runs.
func (m *MiddlewareChain) RunRouteBefore(c Context, names []string) (*Response, error) {
	mws, err := m.resolve(names)
	if err != nil {
		return nil, err
	}
	return runBefore(c, mws)
}

// RunRouteAfter resolves names and threads res through their after hooks.
func (m *MiddlewareChain) RunRouteAfter(c Context, res *Response, names []string) (*Response, error) {
	mws, err := m.resolve(names)
	if err != nil {
		return nil, err
	}
	return runAfter(c, res, mws)
}

func (m *MiddlewareChain) resolve(names []string) ([]Middleware, error) {
	if len(names) == 0 {
		return nil, nil
	}
	mws := make([]Middleware, 0, len(names))
	for _, name := range names {
		mw, ok := m.named[name]
		if !ok {
			return nil, &MiddlewareNotFoundError{Name: name}
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

func runBefore(c Context, mws []Middleware) (*Response, error) {
	for _, mw := range mws {
		if mw.Before == nil {
			continue
		}
		res, err := mw.Before(c)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

func runAfter(c Context, res *Response, mws []Middleware) (*Response, error) {
	for _, mw := range mws {
		if mw.After == nil {
			continue
		}
		next, err := mw.After(c, res)
		if err != nil {
			return nil, err
		}
		if next != nil {
			res = next
		}
	}
	return res, nil
}
