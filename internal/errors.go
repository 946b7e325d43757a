package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// HTTPError is a failure with a status code and a client-facing message.
// Returning one from a handler or middleware produces
// {"error":<status text>,"message":<Message>} with status Code.
type HTTPError struct {
	// Err is the underlying cause. It is logged, never sent to clients.
	Err error

	// Message is the client-facing message.
	Message string

	// ErrorCode is an optional application-specific code.
	ErrorCode string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption sets optional HTTPError fields.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError builds an error answered with status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithErrorCode attaches an application code sent as "code".
func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

// WithError records the cause for logs.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Shorthands for the statuses handlers return most.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusTooManyRequests, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// IsHTTPError reports whether err's chain holds an *HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError returns the first *HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// PanicError wraps a value recovered from a panic in a handler or middleware.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanicError reports whether err wraps a recovered panic.
func IsPanicError(err error) bool {
	return AsPanicError(err) != nil
}

// AsPanicError returns the *PanicError in err's chain, or nil.
func AsPanicError(err error) *PanicError {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// ErrorResponseFor maps err to the response a client should see.
// An HTTPError keeps its status and message. Everything else becomes a 500
// whose message is the error text, except recovered panics whose values
// are not exposed.
func ErrorResponseFor(err error) *Response {
	if httpErr := AsHTTPError(err); httpErr != nil {
		status := httpErr.Code
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		res := ErrorResponse(status, httpErr.Message)
		if httpErr.ErrorCode != "" {
			res = JSON(status, errorEnvelope{Error: http.StatusText(status), Message: httpErr.Message, Code: httpErr.ErrorCode})
		}
		return res
	}
	if IsPanicError(err) {
		return ErrorResponse(http.StatusInternalServerError, "unexpected panic")
	}
	return ErrorResponse(http.StatusInternalServerError, err.Error())
}

// DefaultErrorHandler logs the failure and returns ErrorResponseFor(err).
func DefaultErrorHandler(c Context, err error) *Response {
	attrs := []any{slog.Any("error", err)}
	if pe := AsPanicError(err); pe != nil {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	if mnf := AsMiddlewareNotFound(err); mnf != nil {
		attrs = append(attrs, slog.String("middleware", mnf.Name))
	}
	if httpErr := AsHTTPError(err); httpErr == nil || httpErr.Code >= http.StatusInternalServerError {
		c.LogError("request failed", attrs...)
	}
	return ErrorResponseFor(err)
}
