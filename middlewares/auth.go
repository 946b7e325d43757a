package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dumbdev/katal/internal"
)

// Authenticator identifies the caller of a request.
//
// ok is false when the request carries no usable credentials. err wrapping
// ErrMissingToken, ErrInvalidToken or ErrTokenExpired is a client problem
// and becomes a 401; any other error is an authenticator failure and goes
// to the application error handler.
type Authenticator interface {
	Authenticate(c internal.Context) (principal any, ok bool, err error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(c internal.Context) (any, bool, error)

func (f AuthenticatorFunc) Authenticate(c internal.Context) (any, bool, error) {
	return f(c)
}

type principalKey struct{}

type authConfig struct {
	unauthorized func(c internal.Context, err error) *internal.Response
	scheme       string
	realm        string
	optional     bool
}

// AuthOption configures the Auth middleware.
type AuthOption func(*authConfig)

// WithRealm sets the realm advertised in WWW-Authenticate.
func WithRealm(realm string) AuthOption {
	return func(cfg *authConfig) {
		cfg.realm = realm
	}
}

// WithAuthScheme sets the scheme advertised in WWW-Authenticate.
// Defaults to "Bearer".
func WithAuthScheme(scheme string) AuthOption {
	return func(cfg *authConfig) {
		if scheme != "" {
			cfg.scheme = scheme
		}
	}
}

// WithOptionalAuth lets anonymous requests through. Requests with bad
// credentials are still rejected.
func WithOptionalAuth() AuthOption {
	return func(cfg *authConfig) {
		cfg.optional = true
	}
}

// WithUnauthorizedResponse replaces the default 401 response. err is nil
// when the request had no credentials.
func WithUnauthorizedResponse(fn func(c internal.Context, err error) *internal.Response) AuthOption {
	return func(cfg *authConfig) {
		if fn != nil {
			cfg.unauthorized = fn
		}
	}
}

// Auth returns middleware that authenticates the request in the before
// phase and stores the principal for GetPrincipal. Rejected requests are
// answered with 401 and never reach the handler.
//
//	katal.WithNamedMiddleware("auth", middlewares.Auth(jwtAuth))
func Auth(a Authenticator, opts ...AuthOption) internal.Middleware {
	cfg := &authConfig{scheme: "Bearer"}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.unauthorized == nil {
		cfg.unauthorized = defaultUnauthorized
	}

	challenge := cfg.scheme
	if cfg.realm != "" {
		challenge = fmt.Sprintf("%s realm=%q", cfg.scheme, cfg.realm)
	}

	reject := func(c internal.Context, err error) *internal.Response {
		return cfg.unauthorized(c, err).Clone().SetHeader("WWW-Authenticate", challenge)
	}

	return internal.Middleware{
		Before: func(c internal.Context) (*internal.Response, error) {
			principal, ok, err := a.Authenticate(c)
			switch {
			case err != nil && isAuthError(err):
				c.LogDebug("authentication rejected", slog.Any("error", err))
				return reject(c, err), nil
			case err != nil:
				return nil, fmt.Errorf("authenticate: %w", err)
			case !ok && cfg.optional:
				return nil, nil
			case !ok:
				return reject(c, nil), nil
			}
			c.Set(principalKey{}, principal)
			return nil, nil
		},
	}
}

func defaultUnauthorized(_ internal.Context, err error) *internal.Response {
	msg := "authentication required"
	switch {
	case err == nil:
	case isExpired(err):
		msg = "token expired"
	case isMissing(err):
	default:
		msg = "invalid token"
	}
	return internal.ErrorResponse(http.StatusUnauthorized, msg)
}

// GetPrincipal returns the principal stored by Auth.
func GetPrincipal[T any](c internal.Context) (T, bool) {
	v, ok := c.Get(principalKey{}).(T)
	return v, ok
}

// IsAuthenticated reports whether Auth accepted the request.
func IsAuthenticated(c internal.Context) bool {
	return c.Get(principalKey{}) != nil
}
