package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores values of one type under string keys.
//
// The ttl passed to Set is the entry lifetime: a positive value expires the
// entry after that long, zero selects the backend default and a negative
// value keeps the entry until it is deleted or evicted. Get reports a miss
// with ErrNotFound.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Marshaler converts values to bytes for backends that store raw data.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON is the default Marshaler.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrDecode, err)
	}
	return v, nil
}

// Loader produces the value for a missing key and the TTL to store it with.
type Loader[V any] func(ctx context.Context) (V, time.Duration, error)

var loads singleflight.Group

// GetOrSet returns the cached value for key. On a miss it runs load and
// stores the result. Goroutines missing the same key of the same cache wait
// for a single load call. A load error is returned to every waiter and
// nothing is stored. A failed Set still returns the loaded value.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, load Loader[V]) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	// The flight key includes the cache identity: two caches may use the
	// same key for different value types.
	res, err, _ := loads.Do(fmt.Sprintf("%p|%s", c, key), func() (any, error) {
		v, ttl, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
