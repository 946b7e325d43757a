package middlewares_test

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/internal"
	"github.com/dumbdev/katal/middlewares"
	"github.com/dumbdev/katal/pkg/cache"
)

func cachedApp(store cache.Cache[middlewares.CachedResponse], opts ...middlewares.ResponseCacheOption) (*internal.App, *atomic.Int32) {
	var calls atomic.Int32
	app := internal.New(
		internal.WithMiddleware(middlewares.RequestID()),
		internal.WithNamedMiddleware("cache", middlewares.ResponseCache(store, opts...)),
		internal.WithRoutes(func(r internal.Router) {
			r.Group("/", func(r internal.Router) {
				r.GET("/count", func(internal.Context) (any, error) {
					n := calls.Add(1)
					return internal.Text(http.StatusOK, strconv.Itoa(int(n))).SetHeader("Set-Cookie", "s=1"), nil
				})
				r.POST("/count", func(internal.Context) (any, error) {
					calls.Add(1)
					return internal.Text(http.StatusOK, "posted"), nil
				})
				r.GET("/missing", func(internal.Context) (any, error) {
					calls.Add(1)
					return nil, internal.ErrNotFound("gone")
				})
				r.GET("/created", func(internal.Context) (any, error) {
					calls.Add(1)
					return internal.Text(http.StatusCreated, "made"), nil
				})
			}, internal.WithRouteMiddleware("cache"))
		}),
	)
	return app, &calls
}

func TestResponseCache(t *testing.T) {
	t.Parallel()

	newStore := func(t *testing.T) cache.Cache[middlewares.CachedResponse] {
		store := cache.NewMemory[middlewares.CachedResponse](cache.WithCleanupInterval(0))
		t.Cleanup(func() { _ = store.Close() })
		return store
	}

	t.Run("miss then hit", func(t *testing.T) {
		t.Parallel()

		app, calls := cachedApp(newStore(t), middlewares.WithCacheTTL(time.Minute))

		w := do(app, http.MethodGet, "/count", nil)
		require.Equal(t, "1", w.Body.String())
		require.Equal(t, "MISS", w.Header().Get("X-Cache"))
		require.Equal(t, "s=1", w.Header().Get("Set-Cookie"))

		w = do(app, http.MethodGet, "/count", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "1", w.Body.String())
		require.Equal(t, "HIT", w.Header().Get("X-Cache"))
		require.Empty(t, w.Header().Get("Set-Cookie"))
		require.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		require.NotEmpty(t, w.Header().Get("X-Request-ID"), "global after runs on a hit")
		require.Equal(t, int32(1), calls.Load())

		w = do(app, http.MethodGet, "/count?page=2", nil)
		require.Equal(t, "2", w.Body.String())
	})

	t.Run("bypassed requests", func(t *testing.T) {
		t.Parallel()

		app, calls := cachedApp(newStore(t))

		do(app, http.MethodPost, "/count", nil)
		do(app, http.MethodPost, "/count", nil)
		do(app, http.MethodGet, "/count", map[string]string{"Authorization": "Bearer x"})
		do(app, http.MethodGet, "/count", map[string]string{"Authorization": "Bearer x"})
		do(app, http.MethodGet, "/count", map[string]string{"Cache-Control": "no-cache"})
		require.Equal(t, int32(5), calls.Load())
	})

	t.Run("only 200 is stored", func(t *testing.T) {
		t.Parallel()

		app, calls := cachedApp(newStore(t))

		for range 2 {
			w := do(app, http.MethodGet, "/missing", nil)
			require.Equal(t, http.StatusNotFound, w.Code)
			w = do(app, http.MethodGet, "/created", nil)
			require.Equal(t, http.StatusCreated, w.Code)
		}
		require.Equal(t, int32(4), calls.Load())
	})

	t.Run("authorized caching", func(t *testing.T) {
		t.Parallel()

		app, calls := cachedApp(newStore(t), middlewares.WithAuthorizedCaching(),
			middlewares.WithCacheKey(func(c internal.Context) string {
				return c.Header("Authorization") + " " + c.Request().URL.Path
			}),
		)

		do(app, http.MethodGet, "/count", map[string]string{"Authorization": "a"})
		do(app, http.MethodGet, "/count", map[string]string{"Authorization": "a"})
		w := do(app, http.MethodGet, "/count", map[string]string{"Authorization": "b"})
		require.Equal(t, "2", w.Body.String())
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("redis store", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		store := cache.NewRedis[middlewares.CachedResponse](client, nil, cache.WithPrefix("http"))
		app, calls := cachedApp(store, middlewares.WithCacheTTL(time.Minute))

		do(app, http.MethodGet, "/count", nil)
		w := do(app, http.MethodGet, "/count", nil)
		require.Equal(t, "HIT", w.Header().Get("X-Cache"))
		require.Equal(t, "1", w.Body.String())
		require.Equal(t, int32(1), calls.Load())

		require.Equal(t, time.Minute, mr.TTL("http:GET /count"))
	})
}
