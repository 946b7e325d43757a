package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory builds a service instance. It receives the container so it can
// resolve its own dependencies.
type Factory func(c *Container) (any, error)

// Lifetime controls how often a binding's factory runs.
type Lifetime uint8

const (
	// Transient bindings run their factory on every resolution.
	Transient Lifetime = iota
	// Singleton bindings run their factory once and cache the result.
	Singleton
)

func (l Lifetime) String() string {
	if l == Singleton {
		return "singleton"
	}
	return "transient"
}

// binding is a registered factory. Replacing a name creates a new binding,
// so a cached instance never outlives the registration that produced it.
type binding struct {
	factory  Factory
	lifetime Lifetime
	instance any
	resolved bool
}

// Container is a name to factory registry with singleton and transient lifetimes.
// It is safe for concurrent use.
type Container struct {
	*registry
	// resolving holds the names being built on this call path. Factories
	// receive a view of the container carrying it, which is how a factory
	// that ends up resolving its own name is caught.
	resolving []string
}

type registry struct {
	bindings map[string]*binding
	created  []*binding // resolved singletons in creation order, used by Close
	group    singleflight.Group
	mu       sync.RWMutex
}

// New creates an empty container.
func New() *Container {
	return &Container{
		registry: &registry{bindings: make(map[string]*binding)},
	}
}

// within returns a view of c for the factory building name.
func (c *Container) within(name string) *Container {
	return &Container{
		registry:  c.registry,
		resolving: append(slices.Clip(c.resolving), name),
	}
}

// Singleton registers a factory whose first successful result is cached and
// returned by every later Resolve call.
// Registering an existing name replaces it and drops any cached instance.
func (c *Container) Singleton(name string, f Factory) {
	c.register(name, f, Singleton)
}

// Bind registers a factory that runs on every Resolve call.
// Registering an existing name replaces it and drops any cached instance.
func (c *Container) Bind(name string, f Factory) {
	c.register(name, f, Transient)
}

func (c *Container) register(name string, f Factory, lt Lifetime) {
	if f == nil {
		panic("container: nil factory for " + name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.bindings[name]; ok && old.resolved {
		c.forget(old)
	}
	c.bindings[name] = &binding{factory: f, lifetime: lt}
}

// Resolve returns the instance registered under name.
// Returns a *NotFoundError when nothing is registered under name and a
// *CycleError when a factory depends on its own name, directly or through
// other bindings.
func (c *Container) Resolve(name string) (any, error) {
	if slices.Contains(c.resolving, name) {
		return nil, &CycleError{Path: append(slices.Clone(c.resolving), name)}
	}

	c.mu.RLock()
	b, ok := c.bindings[name]
	var (
		instance any
		resolved bool
	)
	if ok {
		instance, resolved = b.instance, b.resolved
	}
	c.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	if b.lifetime == Transient {
		v, err := b.factory(c.within(name))
		if err != nil {
			return nil, &FactoryError{Name: name, Err: err}
		}
		return v, nil
	}

	if resolved {
		return instance, nil
	}

	return c.createSingleton(name, b)
}

// createSingleton runs the factory for b at most once, even when several
// goroutines miss the cache at the same time. Failed attempts are not cached.
func (c *Container) createSingleton(name string, b *binding) (any, error) {
	// Keyed by binding so a replaced registration never joins a stale call.
	key := fmt.Sprintf("%s#%p", name, b)
	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if b.resolved {
			v := b.instance
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		v, err := b.factory(c.within(name))
		if err != nil {
			return nil, &FactoryError{Name: name, Err: err}
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		// The binding may have been replaced or removed while the factory ran.
		// The caller still gets the instance it asked for, it just isn't kept.
		if c.bindings[name] == b {
			b.instance = v
			b.resolved = true
			c.created = append(c.created, b)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// MustResolve is like Resolve but panics on error.
// Use it during application wiring where a missing service is a programming error.
func (c *Container) MustResolve(name string) any {
	v, err := c.Resolve(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether a binding exists for name.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[name]
	return ok
}

// Remove deletes the binding for name along with any cached instance.
// Removing an unknown name is a no-op.
func (c *Container) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.bindings[name]; ok {
		if b.resolved {
			c.forget(b)
		}
		delete(c.bindings, name)
	}
}

// Names returns the registered names in sorted order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.bindings))
	for name := range c.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases cached singletons in reverse creation order.
// Instances implementing Shutdown(context.Context) error or io.Closer are
// released; everything else is dropped. All bindings stay registered, so
// the next Resolve builds a fresh instance.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	instances := make([]any, 0, len(c.created))
	for _, b := range c.created {
		instances = append(instances, b.instance)
		b.instance = nil
		b.resolved = false
	}
	c.created = nil
	c.mu.Unlock()

	var errs []error
	for _, v := range slices.Backward(instances) {
		if err := release(ctx, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// forget drops b from the creation list. Caller must hold the write lock.
func (c *Container) forget(b *binding) {
	for i, item := range c.created {
		if item == b {
			c.created = slices.Delete(c.created, i, i+1)
			return
		}
	}
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func release(ctx context.Context, v any) error {
	switch s := v.(type) {
	case shutdowner:
		return s.Shutdown(ctx)
	case io.Closer:
		return s.Close()
	}
	return nil
}
