package cache

import "time"

const (
	defaultTTL             = time.Hour
	defaultCleanupInterval = time.Minute
)

// MemoryOption tunes NewMemory.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
	sliding         bool
}

// WithDefaultTTL is the lifetime applied when Set gets a zero ttl.
// A negative value stores such entries without expiry. One hour otherwise.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.defaultTTL = d }
}

// WithCleanupInterval is the janitor period, one minute by default. With
// zero no janitor runs and expired entries linger until touched.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.cleanupInterval = d }
}

// WithMaxEntries caps the cache size. Inserting past the cap drops the
// least recently used entry. Zero leaves it unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) { o.maxEntries = max(n, 0) }
}

// WithSlidingExpiration restarts an entry's TTL on every hit.
func WithSlidingExpiration() MemoryOption {
	return func(o *memoryOptions) { o.sliding = true }
}

// RedisOption tunes NewRedis.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

// WithRedisDefaultTTL is the lifetime applied when Set gets a zero ttl.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) { o.defaultTTL = d }
}

// WithPrefix stores keys as "<prefix>:<key>" and limits Clear to them.
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) { o.prefix = prefix }
}
