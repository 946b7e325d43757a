package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/pkg/cache"
)

type profile struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedis_GetSet(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	c := cache.NewRedis[profile](client, nil, cache.WithPrefix("profiles"))
	ctx := context.Background()

	_, err := c.Get(ctx, "ada")
	require.ErrorIs(t, err, cache.ErrNotFound)

	want := profile{Name: "Ada", Roles: []string{"admin"}}
	require.NoError(t, c.Set(ctx, "ada", want, time.Minute))

	got, err := c.Get(ctx, "ada")
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.True(t, mr.Exists("profiles:ada"))
	require.Equal(t, time.Minute, mr.TTL("profiles:ada"))

	has, err := c.Has(ctx, "ada")
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, c.Delete(ctx, "ada"))
	has, err = c.Has(ctx, "ada")
	require.NoError(t, err)
	require.False(t, has)
}

func TestRedis_TTL(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	c := cache.NewRedis[string](client, nil, cache.WithRedisDefaultTTL(10*time.Second))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "default", "v", 0))
	require.Equal(t, 10*time.Second, mr.TTL("default"))

	require.NoError(t, c.Set(ctx, "forever", "v", -1))
	require.Zero(t, mr.TTL("forever"))

	require.NoError(t, c.Set(ctx, "short", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedis_ClearByPrefix(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	c := cache.NewRedis[int](client, nil, cache.WithPrefix("scoped"))
	ctx := context.Background()

	for i := range 250 {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), i, time.Minute))
	}
	require.NoError(t, mr.Set("other", "kept"))

	require.NoError(t, c.Clear(ctx))

	keys := mr.Keys()
	require.Equal(t, []string{"other"}, keys)
}

func TestRedis_CorruptValue(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	c := cache.NewRedis[profile](client, nil)

	require.NoError(t, mr.Set("broken", "not json"))

	_, err := c.Get(context.Background(), "broken")
	require.ErrorIs(t, err, cache.ErrDecode)
}
