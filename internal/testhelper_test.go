package internal_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/internal"
)

func serve(t *testing.T, app *internal.App, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func serveJSON(t *testing.T, app *internal.App, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, app, method, target, strings.NewReader(body), "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func testContext(method, target string, params map[string]string, body any) internal.Context {
	return internal.NewContext(httptest.NewRequest(method, target, nil), nil, nil, params, body)
}

// recorder collects hook names in call order.
type recorder struct {
	calls []string
}

func (r *recorder) mw(name string) internal.Middleware {
	return internal.Middleware{
		Before: func(internal.Context) (*internal.Response, error) {
			r.calls = append(r.calls, name+".before")
			return nil, nil
		},
		After: func(_ internal.Context, res *internal.Response) (*internal.Response, error) {
			r.calls = append(r.calls, name+".after")
			return res, nil
		},
	}
}

func (r *recorder) handler(name string) internal.HandlerFunc {
	return func(internal.Context) (any, error) {
		r.calls = append(r.calls, name)
		return map[string]string{"handler": name}, nil
	}
}

func okHandler(internal.Context) (any, error) {
	return internal.Text(http.StatusOK, "ok"), nil
}
