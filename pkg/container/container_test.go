package container_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/pkg/container"
)

type service struct {
	id int
}

func TestContainer_Singleton(t *testing.T) {
	t.Parallel()

	t.Run("factory runs once across many resolutions", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		c := container.New()
		c.Singleton("svc", func(*container.Container) (any, error) {
			n := calls.Add(1)
			return &service{id: int(n)}, nil
		})

		first, err := c.Resolve("svc")
		require.NoError(t, err)

		for range 10 {
			v, err := c.Resolve("svc")
			require.NoError(t, err)
			require.Same(t, first, v)
		}
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("concurrent first resolution shares one factory call", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		release := make(chan struct{})
		c := container.New()
		c.Singleton("svc", func(*container.Container) (any, error) {
			calls.Add(1)
			<-release
			return &service{}, nil
		})

		var wg sync.WaitGroup
		results := make([]any, 8)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := c.Resolve("svc")
				assert.NoError(t, err)
				results[i] = v
			}()
		}
		close(release)
		wg.Wait()

		require.Equal(t, int32(1), calls.Load())
		for _, v := range results {
			require.Same(t, results[0], v)
		}
	})

	t.Run("factory error is not cached", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		boom := errors.New("boom")
		c := container.New()
		c.Singleton("svc", func(*container.Container) (any, error) {
			if calls.Add(1) == 1 {
				return nil, boom
			}
			return &service{}, nil
		})

		_, err := c.Resolve("svc")
		require.ErrorIs(t, err, boom)

		var fe *container.FactoryError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "svc", fe.Name)

		v, err := c.Resolve("svc")
		require.NoError(t, err)
		require.NotNil(t, v)
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("re-registering drops cached instance", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		c.Singleton("svc", container.Value(&service{id: 1}))

		v, err := container.Resolve[*service](c, "svc")
		require.NoError(t, err)
		require.Equal(t, 1, v.id)

		c.Singleton("svc", container.Value(&service{id: 2}))

		v, err = container.Resolve[*service](c, "svc")
		require.NoError(t, err)
		require.Equal(t, 2, v.id)
	})
}

func TestContainer_Bind(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := container.New()
	c.Bind("svc", func(*container.Container) (any, error) {
		return &service{id: int(calls.Add(1))}, nil
	})

	const n = 5
	seen := make(map[int]bool)
	for range n {
		v, err := container.Resolve[*service](c, "svc")
		require.NoError(t, err)
		seen[v.id] = true
	}

	require.Equal(t, int32(n), calls.Load())
	require.Len(t, seen, n)
}

func TestContainer_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("unknown name returns NotFoundError", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		_, err := c.Resolve("missing")
		require.Error(t, err)
		require.ErrorIs(t, err, container.ErrNotFound)
		require.True(t, container.IsNotFound(err))

		nf := container.AsNotFound(err)
		require.NotNil(t, nf)
		require.Equal(t, "missing", nf.Name)
		require.Contains(t, err.Error(), "missing")
	})

	t.Run("factories can resolve dependencies", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		c.Singleton("base", container.Value(&service{id: 7}))
		c.Bind("derived", func(c *container.Container) (any, error) {
			base, err := container.Resolve[*service](c, "base")
			if err != nil {
				return nil, err
			}
			return base.id * 2, nil
		})

		v, err := container.Resolve[int](c, "derived")
		require.NoError(t, err)
		require.Equal(t, 14, v)
	})

	t.Run("generic resolve reports type mismatch", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		c.Singleton("svc", container.Value("a string"))

		_, err := container.Resolve[*service](c, "svc")
		require.ErrorIs(t, err, container.ErrTypeMismatch)
	})

	t.Run("singleton resolving itself fails instead of blocking", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		c.Singleton("a", func(c *container.Container) (any, error) {
			return c.Resolve("a")
		})

		done := make(chan error, 1)
		go func() {
			_, err := c.Resolve("a")
			done <- err
		}()

		select {
		case err := <-done:
			require.ErrorIs(t, err, container.ErrCycle)
			var cycle *container.CycleError
			require.ErrorAs(t, err, &cycle)
			require.Equal(t, []string{"a", "a"}, cycle.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("Resolve blocked on a self-referencing singleton")
		}
	})

	t.Run("indirect cycles are reported with their path", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		c.Singleton("a", func(c *container.Container) (any, error) { return c.Resolve("b") })
		c.Bind("b", func(c *container.Container) (any, error) { return c.Resolve("a") })

		_, err := c.Resolve("a")
		require.ErrorIs(t, err, container.ErrCycle)
		require.Contains(t, err.Error(), "a -> b -> a")
	})

	t.Run("diamond dependencies are not cycles", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		c.Singleton("base", container.Value(&service{id: 1}))
		c.Bind("left", func(c *container.Container) (any, error) { return c.Resolve("base") })
		c.Bind("right", func(c *container.Container) (any, error) { return c.Resolve("base") })
		c.Bind("top", func(c *container.Container) (any, error) {
			if _, err := c.Resolve("left"); err != nil {
				return nil, err
			}
			return c.Resolve("right")
		})

		v, err := c.Resolve("top")
		require.NoError(t, err)
		require.Equal(t, &service{id: 1}, v)
	})

	t.Run("must resolve panics on missing", func(t *testing.T) {
		t.Parallel()

		c := container.New()
		require.Panics(t, func() { c.MustResolve("missing") })
		require.Panics(t, func() { container.MustResolve[*service](c, "missing") })
	})
}

func TestContainer_HasRemoveNames(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Singleton("b", container.Value(1))
	c.Bind("a", container.Value(2))

	require.True(t, c.Has("a"))
	require.True(t, c.Has("b"))
	require.False(t, c.Has("c"))
	require.Equal(t, []string{"a", "b"}, c.Names())

	c.Remove("a")
	c.Remove("unknown")

	require.False(t, c.Has("a"))
	_, err := c.Resolve("a")
	require.ErrorIs(t, err, container.ErrNotFound)
}

type closer struct {
	name  string
	order *[]string
}

func (c *closer) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

type shutdowner struct {
	order *[]string
}

func (s *shutdowner) Shutdown(context.Context) error {
	*s.order = append(*s.order, "shutdowner")
	return errors.New("shutdown failed")
}

func TestContainer_Close(t *testing.T) {
	t.Parallel()

	var order []string
	c := container.New()
	c.Singleton("first", container.Value(&closer{name: "first", order: &order}))
	c.Singleton("second", container.Value(&shutdowner{order: &order}))
	c.Singleton("third", container.Value(&closer{name: "third", order: &order}))
	c.Singleton("unused", container.Value(&closer{name: "unused", order: &order}))

	for _, name := range []string{"first", "second", "third"} {
		_, err := c.Resolve(name)
		require.NoError(t, err)
	}

	err := c.Close(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "shutdown failed")
	require.Equal(t, []string{"third", "shutdowner", "first"}, order)

	// Bindings survive Close and build fresh instances.
	require.True(t, c.Has("first"))
	require.NoError(t, c.Close(context.Background()))
	require.Len(t, order, 3)
}
