package internal

import (
	"encoding/json"
	"net/http"

	"github.com/dumbdev/katal/pkg/validator"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
)

// Response is the value threaded through the pipeline and written once at
// the end of the request.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
}

// NewResponse creates a response with an empty header set.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: body}
}

// SetHeader sets a header and returns the response for chaining.
func (r *Response) SetHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	out := &Response{Status: r.Status, Header: r.Header.Clone()}
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// WriteTo writes headers, status and body to w.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = v
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

type successEnvelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

type failEnvelope struct {
	Errors  any    `json:"errors,omitempty"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Path    string `json:"path,omitempty"`
}

// JSON encodes v with the given status. If v cannot be encoded the result
// is the 500 error envelope.
func JSON(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		body, _ = json.Marshal(errorEnvelope{
			Error:   http.StatusText(http.StatusInternalServerError),
			Message: "failed to encode response",
		})
		status = http.StatusInternalServerError
	}
	return NewResponse(status, body).SetHeader("Content-Type", contentTypeJSON)
}

// Success builds {"success":true,"message":...,"data":...} with status 200.
// The message is omitted when not given.
func Success(data any, message ...string) *Response {
	env := successEnvelope{Success: true, Data: data}
	if len(message) > 0 {
		env.Message = message[0]
	}
	return JSON(http.StatusOK, env)
}

// Fail builds {"success":false,"message":...,"errors":...}.
// errs is omitted when nil.
func Fail(status int, message string, errs any) *Response {
	return JSON(status, failEnvelope{Message: message, Errors: errs})
}

// ValidationFailed builds the 422 envelope for validation errors.
func ValidationFailed(errs validator.ValidationErrors) *Response {
	return Fail(http.StatusUnprocessableEntity, "Validation failed", errs)
}

// NotFound builds {"error":"Not Found","path":...} with status 404.
func NotFound(path string) *Response {
	return JSON(http.StatusNotFound, errorEnvelope{Error: http.StatusText(http.StatusNotFound), Path: path})
}

// ErrorResponse builds {"error":<status text>,"message":...}.
func ErrorResponse(status int, message string) *Response {
	return JSON(status, errorEnvelope{Error: http.StatusText(status), Message: message})
}

// Redirect builds a redirect to url. Status defaults to 302.
func Redirect(status int, url string) *Response {
	if status == 0 {
		status = http.StatusFound
	}
	return NewResponse(status, nil).SetHeader("Location", url)
}

func Text(status int, s string) *Response {
	return NewResponse(status, []byte(s)).SetHeader("Content-Type", contentTypeText)
}

func HTML(status int, s string) *Response {
	return NewResponse(status, []byte(s)).SetHeader("Content-Type", contentTypeHTML)
}

func NoContent(status int) *Response {
	if status == 0 {
		status = http.StatusNoContent
	}
	return NewResponse(status, nil)
}

// toResponse converts a handler result into a response.
func toResponse(v any) *Response {
	switch r := v.(type) {
	case *Response:
		if r == nil {
			return NoContent(http.StatusNoContent)
		}
		return r
	case Response:
		return &r
	}
	return JSON(http.StatusOK, v)
}
