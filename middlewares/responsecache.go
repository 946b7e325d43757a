package middlewares

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/pkg/cache"
)

// CachedResponse is what ResponseCache stores. It is exported so Redis
// backends can encode it with cache.JSON.
type CachedResponse struct {
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`
	Status int         `json:"status"`
}

type responseCacheConfig struct {
	key           func(c internal.Context) string
	ttl           time.Duration
	cacheAuthored bool
}

// ResponseCacheOption configures ResponseCache.
type ResponseCacheOption func(*responseCacheConfig)

// WithCacheTTL sets how long responses are kept. Zero uses the store default.
func WithCacheTTL(d time.Duration) ResponseCacheOption {
	return func(cfg *responseCacheConfig) {
		cfg.ttl = d
	}
}

// WithCacheKey sets the cache key function. Defaults to method plus
// request URI.
func WithCacheKey(fn func(c internal.Context) string) ResponseCacheOption {
	return func(cfg *responseCacheConfig) {
		if fn != nil {
			cfg.key = fn
		}
	}
}

// WithAuthorizedCaching caches requests carrying an Authorization header.
// Only use it with a key that includes the caller identity.
func WithAuthorizedCaching() ResponseCacheOption {
	return func(cfg *responseCacheConfig) {
		cfg.cacheAuthored = true
	}
}

type responseCacheKey struct{}

// ResponseCache returns middleware that serves repeated GET and HEAD
// requests from store. A hit is returned from the before phase with
// X-Cache: HIT; a 200 response is stored in the after phase with
// X-Cache: MISS.
//
// Use it as named route middleware. A route before short-circuit still
// passes through the global after phase, so CORS and request id headers
// are applied to cached responses too.
//
//	store := cache.NewMemory[middlewares.CachedResponse](cache.WithMaxEntries(10_000))
//	katal.WithNamedMiddleware("cache", middlewares.ResponseCache(store, middlewares.WithCacheTTL(time.Minute)))
func ResponseCache(store cache.Cache[CachedResponse], opts ...ResponseCacheOption) internal.Middleware {
	cfg := &responseCacheConfig{key: defaultCacheKey}
	for _, opt := range opts {
		opt(cfg)
	}

	cacheable := func(r *http.Request) bool {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return false
		}
		if !cfg.cacheAuthored && r.Header.Get("Authorization") != "" {
			return false
		}
		return !strings.Contains(r.Header.Get("Cache-Control"), "no-cache")
	}

	return internal.Middleware{
		Before: func(c internal.Context) (*internal.Response, error) {
			if !cacheable(c.Request()) {
				return nil, nil
			}
			key := cfg.key(c)
			hit, err := store.Get(c, key)
			if err == nil {
				res := &internal.Response{Status: hit.Status, Header: hit.Header.Clone(), Body: bytes.Clone(hit.Body)}
				return res.SetHeader("X-Cache", "HIT"), nil
			}
			if !errors.Is(err, cache.ErrNotFound) {
				c.LogWarn("response cache read failed", "error", err)
			}
			c.Set(responseCacheKey{}, key)
			return nil, nil
		},
		After: func(c internal.Context, res *internal.Response) (*internal.Response, error) {
			key, ok := c.Get(responseCacheKey{}).(string)
			if !ok || res.Status != http.StatusOK {
				return res, nil
			}

			header := res.Header.Clone()
			if header != nil {
				header.Del("Set-Cookie")
			}
			entry := CachedResponse{Status: res.Status, Header: header, Body: res.Body}
			if err := store.Set(c, key, entry, cfg.ttl); err != nil {
				c.LogWarn("response cache write failed", "error", err)
			}
			return res.Clone().SetHeader("X-Cache", "MISS"), nil
		},
	}
}

func defaultCacheKey(c internal.Context) string {
	r := c.Request()
	return r.Method + " " + r.URL.RequestURI()
}
