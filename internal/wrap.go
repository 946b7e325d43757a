package internal

import (
	"bytes"
	"net/http"
)

// WrapHTTP runs a standard http.Handler as a route handler. Whatever h
// writes is captured and becomes the route's *Response, so after hooks
// still see it.
//
//	r.GET("/debug/vars", katal.WrapHTTP(expvar.Handler()))
func WrapHTTP(h http.Handler) HandlerFunc {
	return func(c Context) (any, error) {
		rec := &capture{res: &Response{Status: http.StatusOK, Header: make(http.Header)}}
		h.ServeHTTP(rec, c.Request())
		rec.res.Body = bytes.Clone(rec.buf.Bytes())
		return rec.res, nil
	}
}

// capture is an in-memory http.ResponseWriter. Only the first status
// sticks.
type capture struct {
	res     *Response
	buf     bytes.Buffer
	settled bool
}

func (w *capture) Header() http.Header { return w.res.Header }

func (w *capture) WriteHeader(code int) {
	if !w.settled {
		w.settled = true
		w.res.Status = code
	}
}

func (w *capture) Write(b []byte) (int, error) {
	w.settled = true
	return w.buf.Write(b)
}

// Flush is a no-op so handlers that stream still work.
func (w *capture) Flush() {}
