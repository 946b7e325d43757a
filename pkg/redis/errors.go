package redis

import "errors"

var (
	// ErrNoURL is returned by Open when Config.URL is empty.
	ErrNoURL = errors.New("redis: no connection url configured")

	// ErrInvalidURL wraps URL parse failures and unsupported schemes.
	ErrInvalidURL = errors.New("redis: invalid connection url")

	// ErrUnreachable is returned when every connection attempt failed.
	ErrUnreachable = errors.New("redis: server unreachable")

	// ErrUnhealthy is returned by the readiness check.
	ErrUnhealthy = errors.New("redis: ping failed")
)
