package cache

import "errors"

var (
	// ErrNotFound is returned by Get for missing and expired keys.
	ErrNotFound = errors.New("cache: key not found")

	// ErrClosed is returned by writes to a closed Memory cache.
	ErrClosed = errors.New("cache: closed")

	// ErrEncode and ErrDecode wrap Marshaler failures.
	ErrEncode = errors.New("cache: encode value")
	ErrDecode = errors.New("cache: decode value")
)
