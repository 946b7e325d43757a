package middlewares

import "errors"

var (
	// ErrMissingToken is returned by authenticators when the request
	// carries no credentials.
	ErrMissingToken = errors.New("middlewares: missing authentication token")

	// ErrInvalidToken is returned by authenticators for malformed tokens,
	// bad signatures and failed claim checks.
	ErrInvalidToken = errors.New("middlewares: invalid token")

	// ErrTokenExpired is returned by authenticators for expired tokens.
	ErrTokenExpired = errors.New("middlewares: token expired")

	// ErrWeakSecret is returned when an HMAC secret is shorter than 32 bytes.
	ErrWeakSecret = errors.New("middlewares: secret must be at least 32 bytes")

	// ErrInvalidLimit is returned for a non-positive rate limit.
	ErrInvalidLimit = errors.New("middlewares: rate limit must be positive")
)

// isAuthError reports whether err is a credential problem the client can fix,
// as opposed to an authenticator failure.
func isAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired)
}

func isExpired(err error) bool { return errors.Is(err, ErrTokenExpired) }
func isMissing(err error) bool { return errors.Is(err, ErrMissingToken) }
