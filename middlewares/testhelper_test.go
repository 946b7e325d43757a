package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dumbdev/katal/internal"
)

// newApp builds an app with GET /ok (200 "ok"), GET /items/:id and any
// extra options.
func newApp(opts ...internal.Option) *internal.App {
	base := []internal.Option{
		internal.WithRoutes(func(r internal.Router) {
			r.GET("/ok", func(internal.Context) (any, error) {
				return internal.Text(http.StatusOK, "ok"), nil
			})
			r.GET("/items/:id", func(c internal.Context) (any, error) {
				return map[string]string{"id": c.Param("id")}, nil
			})
		}),
	}
	return internal.New(append(base, opts...)...)
}

func do(app http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func newContext(method, target string, header map[string]string) internal.Context {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return internal.NewContext(req, nil, nil, nil, nil)
}
