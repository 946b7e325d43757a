// Package cache provides a generic Cache interface with an in-memory LRU
// implementation and a Redis implementation.
//
// TTL semantics for Set are shared by both backends: a positive duration
// expires the entry after that long, zero selects the backend default
// (one hour unless configured) and a negative duration never expires.
//
// # In-Memory Cache
//
// [NewMemory] keeps entries in a map plus a doubly-linked list so lookups
// and LRU eviction are O(1). A janitor goroutine drops expired entries:
//
//	c := cache.NewMemory[string](
//	    cache.WithDefaultTTL(5*time.Minute),
//	    cache.WithMaxEntries(10_000),
//	)
//	defer c.Close()
//
// [WithSlidingExpiration] turns the TTL into an idle timeout. The rate
// limit middleware uses it to forget clients that stopped calling.
//
// # Redis Cache
//
// [NewRedis] takes a client from [github.com/dumbdev/katal/pkg/redis]:
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	c := cache.NewRedis[User](client, nil, cache.WithPrefix("users"))
//
// Values are encoded with a [Marshaler]. nil selects [JSON].
//
// # Stampede Protection
//
// [GetOrSet] loads a missing value once no matter how many goroutines ask:
//
//	user, err := cache.GetOrSet(ctx, c, "user:123", func(ctx context.Context) (User, time.Duration, error) {
//	    u, err := repo.FindUser(ctx, "123")
//	    return u, 5 * time.Minute, err
//	})
//
// Misses return [ErrNotFound]; writes to a closed memory cache return [ErrClosed].
package cache
