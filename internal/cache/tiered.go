package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// entry stores a cached value and the timestamp it was stored at.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Tiered is a two-tier cache: a process-local in-memory map in front of a
// durable Store. The memory tier exists purely to avoid redundant store
// round-trips within a warm process; the store tier is the source of truth
// across restarts. TTL is measured independently at each tier so a cold
// process that loads a still-fresh durable record does not treat it as
// instantly stale.
//
// One instance exists per record family (readiness, timeline); instances
// never share a map.
type Tiered[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]entry[V]
	ttl   time.Duration
	store Store[K, V]
	now   func() time.Time
}

// NewTiered constructs a two-tier cache over the given durable store.
func NewTiered[K comparable, V any](store Store[K, V], ttl time.Duration, opts Options) *Tiered[K, V] {
	return &Tiered[K, V]{
		items: make(map[K]entry[V]),
		ttl:   ttl,
		store: store,
		now:   opts.clock(),
	}
}

// Get returns the cached value for key, or false if no fresh value exists in
// either tier. An expired memory entry is evicted before falling through to
// the store. A fresh store record is promoted into the memory tier under its
// original stored-at timestamp, so the value's freshness window is preserved
// across tiers rather than reset at promotion. An expired store record is
// treated as absent and pruned best-effort in the background. Store errors
// are treated as a miss, never surfaced.
func (t *Tiered[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V
	now := t.now()

	t.mu.Lock()
	if e, ok := t.items[key]; ok {
		if now.Sub(e.storedAt) < t.ttl {
			t.mu.Unlock()
			return e.value, true
		}
		delete(t.items, key)
	}
	t.mu.Unlock()

	value, storedAt, ok, err := t.store.Load(ctx, key)
	if err != nil {
		log.Printf("cache: store load failed for %v: %v", key, err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	if now.Sub(storedAt) >= t.ttl {
		// Expired durable record: prune without holding up the read.
		go func() {
			if err := t.store.Delete(context.Background(), key); err != nil {
				log.Printf("cache: pruning expired record %v: %v", key, err)
			}
		}()
		return zero, false
	}

	t.mu.Lock()
	t.items[key] = entry[V]{value: value, storedAt: storedAt}
	t.mu.Unlock()
	return value, true
}

// Set writes the value to the memory tier immediately, then to the durable
// store. A store failure is returned to the caller; the memory tier write is
// not rolled back, since the memory tier is advisory.
func (t *Tiered[K, V]) Set(ctx context.Context, key K, value V) error {
	t.mu.Lock()
	t.items[key] = entry[V]{value: value, storedAt: t.now()}
	t.mu.Unlock()

	if err := t.store.Save(ctx, key, value); err != nil {
		return fmt.Errorf("saving %v to durable store: %w", key, err)
	}
	return nil
}

// Invalidate removes the key from both tiers. The memory-tier removal is
// unconditional and happens first, so a failed store delete never leaves a
// stale memory entry behind.
func (t *Tiered[K, V]) Invalidate(ctx context.Context, key K) error {
	t.mu.Lock()
	delete(t.items, key)
	t.mu.Unlock()

	if err := t.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting %v from durable store: %w", key, err)
	}
	return nil
}

// Len returns the number of non-expired entries in the memory tier.
func (t *Tiered[K, V]) Len() int {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, e := range t.items {
		if now.Sub(e.storedAt) < t.ttl {
			count++
		}
	}
	return count
}
