package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	expiresAt time.Time // zero: never expires
	value     V
	key       string
	ttl       time.Duration
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// Memory is an in-process cache with per-entry TTL and optional LRU bound.
// The most recently used entries sit at the front of the LRU list.
type Memory[V any] struct {
	index   map[string]*list.Element
	lru     *list.List
	onEvict func(key string, value V)
	stop    chan struct{}
	opts    memoryOptions
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates an in-memory cache.
//
//	limiters := cache.NewMemory[*rate.Limiter](
//	    cache.WithDefaultTTL(10*time.Minute),
//	    cache.WithSlidingExpiration(),
//	    cache.WithMaxEntries(100_000),
//	)
//	defer limiters.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := memoryOptions{
		defaultTTL:      defaultTTL,
		cleanupInterval: defaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory[V]{
		index: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  o,
		stop:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.janitor(o.cleanupInterval)
	}
	return m
}

// SetEvictCallback registers fn to run whenever an entry leaves the cache
// through eviction, expiry, Delete or Clear. fn runs with the cache locked
// and must not call back into it.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.index[key]
	if !ok {
		return zero, ErrNotFound
	}

	it := el.Value.(*item[V])
	now := time.Now()
	if it.expired(now) {
		m.remove(el)
		return zero, ErrNotFound
	}

	if m.opts.sliding && it.ttl > 0 {
		it.expiresAt = now.Add(it.ttl)
	}
	m.lru.MoveToFront(el)
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if el, ok := m.index[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.ttl, it.expiresAt = value, ttl, expiresAt
		m.lru.MoveToFront(el)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.index) >= m.opts.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.index[key] = m.lru.PushFront(&item[V]{key: key, value: value, ttl: ttl, expiresAt: expiresAt})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.index[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.index[key]
	if !ok {
		return false, nil
	}
	if el.Value.(*item[V]).expired(time.Now()) {
		m.remove(el)
		return false, nil
	}
	return true, nil
}

// Len returns the number of stored entries, including expired ones the
// janitor has not removed yet.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for el := m.lru.Front(); el != nil; {
		next := el.Next()
		m.remove(el)
		el = next
	}
	return nil
}

// Close stops the janitor. Reads still work; writes return ErrClosed.
// Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

func (m *Memory[V]) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.purgeExpired()
		}
	}
}

func (m *Memory[V]) purgeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*item[V]).expired(now) {
			m.remove(el)
		}
		el = prev
	}
}

// remove unlinks el and fires the evict callback. Caller holds m.mu.
func (m *Memory[V]) remove(el *list.Element) {
	it := m.lru.Remove(el).(*item[V])
	delete(m.index, it.key)
	if m.onEvict != nil {
		m.onEvict(it.key, it.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
