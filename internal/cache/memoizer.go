// Package cache provides a short-TTL keyed result memoizer shared across
// concurrent requests for identical parameter sets. It shields upstream
// collaborators from duplicate bursts; it is not a durable store.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// KeySeparator joins normalized request parameters into a cache key.
const KeySeparator = "|"

// Key builds a cache key from canonicalized request parameters.
func Key(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// inflightCall tracks a single in-flight computation. done is closed once
// value and err are set; waiters read them only after done.
type inflightCall[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Memoizer is a TTL-bounded, LRU-backed result cache. Entries are served
// only while younger than the TTL. Concurrent lookups for the same missing
// key share a single computation.
//
// Instances are constructed and injected explicitly so each test gets a
// fresh cache; there is no package-level state.
type Memoizer[V any] struct {
	ttl   time.Duration
	mu    sync.RWMutex
	store *lru.Cache[string, entry[V]]

	inflightMu sync.Mutex
	inflight   map[string]*inflightCall[V]

	now func() time.Time
}

// NewMemoizer creates a memoizer holding at most maxEntries entries, each
// valid for ttl after being written.
func NewMemoizer[V any](maxEntries int, ttl time.Duration) *Memoizer[V] {
	store, _ := lru.New[string, entry[V]](maxEntries)
	return &Memoizer[V]{
		ttl:      ttl,
		store:    store,
		inflight: make(map[string]*inflightCall[V]),
		now:      time.Now,
	}
}

// Get returns the cached value for key if one was written within the TTL.
func (m *Memoizer[V]) Get(key string) (V, bool) {
	var zero V
	m.mu.RLock()
	e, ok := m.store.Get(key)
	m.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if m.now().Sub(e.storedAt) >= m.ttl {
		m.mu.Lock()
		m.store.Remove(key)
		m.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set writes a value for key, restarting its TTL.
func (m *Memoizer[V]) Set(key string, value V) {
	m.mu.Lock()
	m.store.Add(key, entry[V]{value: value, storedAt: m.now()})
	m.mu.Unlock()
}

// Do returns the cached value for key, or computes it with fn. Concurrent
// callers missing on the same key wait for a single in-flight computation
// instead of issuing duplicate upstream work. Errors are not cached.
func (m *Memoizer[V]) Do(ctx context.Context, key string, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}

	call, isOwner := m.joinInflight(key)
	if !isOwner {
		var zero V
		select {
		case <-call.done:
			return call.value, call.err
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	call.value, call.err = fn(ctx)
	if call.err == nil {
		m.Set(key, call.value)
	}

	m.inflightMu.Lock()
	delete(m.inflight, key)
	m.inflightMu.Unlock()
	close(call.done)

	return call.value, call.err
}

// joinInflight registers interest in key, reporting whether the caller is
// the one responsible for computing it.
func (m *Memoizer[V]) joinInflight(key string) (*inflightCall[V], bool) {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()

	if call, ok := m.inflight[key]; ok {
		return call, false
	}
	call := &inflightCall[V]{done: make(chan struct{})}
	m.inflight[key] = call
	return call, true
}
