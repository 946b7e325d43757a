package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keys removed per UNLINK while clearing a prefix
const clearBatch = 100

// Redis keeps encoded values in a Redis database shared by every replica.
// Keys are namespaced as "<prefix>:<key>" when a prefix is set.
type Redis[V any] struct {
	rdb   redis.UniversalClient
	codec Marshaler[V]
	opts  redisOptions
}

// NewRedis wraps a client, usually one opened with pkg/redis. A nil
// Marshaler selects JSON. The client stays owned by the caller.
//
//	snapshots := cache.NewRedis[Snapshot](client, nil,
//	    cache.WithPrefix("katal:responses"),
//	    cache.WithRedisDefaultTTL(time.Minute),
//	)
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	r := &Redis[V]{rdb: client, codec: m, opts: redisOptions{defaultTTL: defaultTTL}}
	for _, opt := range opts {
		opt(&r.opts)
	}
	if r.codec == nil {
		r.codec = JSON[V]{}
	}
	return r
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	raw, err := r.rdb.Get(ctx, r.namespaced(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		var zero V
		return zero, ErrNotFound
	case err != nil:
		var zero V
		return zero, fmt.Errorf("cache: get %q: %w", key, err)
	}
	return r.codec.Unmarshal(raw)
}

// Set stores value for ttl. Zero selects the default TTL and a negative
// ttl keeps the key without expiry.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	raw, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}
	// go-redis reads a zero expiration as "persist".
	ttl = max(ttl, 0)
	if err := r.rdb.Set(ctx, r.namespaced(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.namespaced(key)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.namespaced(key)).Result()
	return n == 1, err
}

// Clear unlinks every key under the prefix. Without a prefix the whole
// database is flushed.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.opts.prefix == "" {
		return r.rdb.FlushDB(ctx).Err()
	}

	var pending []string
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := r.rdb.Unlink(ctx, pending...).Err()
		pending = pending[:0]
		return err
	}

	it := r.rdb.Scan(ctx, 0, r.opts.prefix+":*", clearBatch).Iterator()
	for it.Next(ctx) {
		pending = append(pending, it.Val())
		if len(pending) < clearBatch {
			continue
		}
		if err := flush(); err != nil {
			return err
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	return flush()
}

// Close is a no-op.
func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) namespaced(k string) string {
	if r.opts.prefix == "" {
		return k
	}
	return r.opts.prefix + ":" + k
}

var _ Cache[any] = (*Redis[any])(nil)
