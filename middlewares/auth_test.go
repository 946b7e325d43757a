package middlewares_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/middlewares"
)

type user struct{ name string }

// tokenAuth accepts "Bearer good" and rejects "Bearer bad".
var tokenAuth = middlewares.AuthenticatorFunc(func(c internal.Context) (any, bool, error) {
	switch c.Header("Authorization") {
	case "":
		return nil, false, nil
	case "Bearer good":
		return &user{name: "ada"}, true, nil
	case "Bearer old":
		return nil, false, middlewares.ErrTokenExpired
	case "Bearer broken":
		return nil, false, errors.New("identity provider down")
	}
	return nil, false, middlewares.ErrInvalidToken
})

func authApp(opts ...middlewares.AuthOption) *internal.App {
	return internal.New(
		internal.WithNamedMiddleware("auth", middlewares.Auth(tokenAuth, opts...)),
		internal.WithRoutes(func(r internal.Router) {
			r.GET("/public", func(internal.Context) (any, error) {
				return internal.Text(http.StatusOK, "public"), nil
			})
			r.Group("/me", func(r internal.Router) {
				r.GET("/", func(c internal.Context) (any, error) {
					u, ok := middlewares.GetPrincipal[*user](c)
					if !ok {
						return internal.Text(http.StatusOK, "anonymous"), nil
					}
					return internal.Text(http.StatusOK, u.name), nil
				})
			}, internal.WithRouteMiddleware("auth"))
		}),
	)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid token", header: "Bearer good", status: http.StatusOK, body: "ada"},
		{name: "missing token", header: "", status: http.StatusUnauthorized, body: `{"error":"Unauthorized","message":"authentication required"}`},
		{name: "invalid token", header: "Bearer nope", status: http.StatusUnauthorized, body: `{"error":"Unauthorized","message":"invalid token"}`},
		{name: "expired token", header: "Bearer old", status: http.StatusUnauthorized, body: `{"error":"Unauthorized","message":"token expired"}`},
		{name: "authenticator failure", header: "Bearer broken", status: http.StatusInternalServerError},
	}

	app := authApp(middlewares.WithRealm("katal"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(app, http.MethodGet, "/me", map[string]string{"Authorization": tt.header})
			require.Equal(t, tt.status, w.Code)
			if tt.body != "" && tt.status == http.StatusOK {
				require.Equal(t, tt.body, w.Body.String())
			} else if tt.body != "" {
				require.JSONEq(t, tt.body, w.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				require.Equal(t, `Bearer realm="katal"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}

	t.Run("routes without the middleware are public", func(t *testing.T) {
		t.Parallel()

		w := do(app, http.MethodGet, "/public", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("optional auth lets anonymous through", func(t *testing.T) {
		t.Parallel()

		app := authApp(middlewares.WithOptionalAuth())

		w := do(app, http.MethodGet, "/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "anonymous", w.Body.String())

		w = do(app, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer nope"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("custom unauthorized response", func(t *testing.T) {
		t.Parallel()

		app := authApp(
			middlewares.WithAuthScheme("Token"),
			middlewares.WithUnauthorizedResponse(func(_ internal.Context, err error) *internal.Response {
				return internal.Fail(http.StatusUnauthorized, "login first", nil)
			}),
		)

		w := do(app, http.MethodGet, "/me", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"success":false,"message":"login first"}`, w.Body.String())
		require.Equal(t, "Token", w.Header().Get("WWW-Authenticate"))
	})
}

func TestIsAuthenticated(t *testing.T) {
	t.Parallel()

	var authed []bool
	app := internal.New(
		internal.WithMiddleware(middlewares.Auth(tokenAuth, middlewares.WithOptionalAuth())),
		internal.WithRoutes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) (any, error) {
				authed = append(authed, middlewares.IsAuthenticated(c))
				return nil, nil
			})
		}),
	)

	do(app, http.MethodGet, "/", nil)
	do(app, http.MethodGet, "/", map[string]string{"Authorization": "Bearer good"})
	require.Equal(t, []bool{false, true}, authed)
}
