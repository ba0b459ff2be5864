package services

import (
	"context"
	"sync"
	"time"

	"dernek/internal/cache"
)

// Generations hands out a monotonically increasing generation per key. A
// result tagged with an older generation than Current is stale.
type Generations struct {
	mu  sync.Mutex
	gen map[string]uint64
}

func NewGenerations() *Generations {
	return &Generations{gen: make(map[string]uint64)}
}

// Current returns the latest generation of key.
func (g *Generations) Current(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[key]
}

// Bump starts a new generation for key and returns it.
func (g *Generations) Bump(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen[key]++
	return g.gen[key]
}

type cached[T any] struct {
	gen  uint64
	data T
}

// SnapshotCache keeps the last fetched snapshot per key. A fetch result is
// stored only if no Invalidate happened while it was in flight and its
// context is still live.
type SnapshotCache[T any] struct {
	lru  *cache.LRUCache[cached[T]]
	gens *Generations
}

func NewSnapshotCache[T any](size int, ttl time.Duration) *SnapshotCache[T] {
	return &SnapshotCache[T]{
		lru:  cache.NewLRUCache[cached[T]](size, ttl),
		gens: NewGenerations(),
	}
}

// Get returns the cached snapshot of key if it belongs to the current
// generation.
func (c *SnapshotCache[T]) Get(key string) (T, bool) {
	var zero T
	e, ok := c.lru.Get(key)
	if !ok || e.gen != c.gens.Current(key) {
		return zero, false
	}
	return e.data, true
}

// Load returns the cached snapshot or calls fetch. The returned generation
// is the one the data belongs to.
func (c *SnapshotCache[T]) Load(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, uint64, bool, error) {
	gen := c.gens.Current(key)
	if v, ok := c.Get(key); ok {
		return v, gen, true, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, gen, false, err
	}
	c.store(ctx, key, gen, v)
	return v, gen, false, nil
}

func (c *SnapshotCache[T]) store(ctx context.Context, key string, gen uint64, v T) bool {
	if ctx.Err() != nil || c.gens.Current(key) != gen {
		return false
	}
	c.lru.Set(key, cached[T]{gen: gen, data: v})
	return true
}

// Invalidate drops the snapshot of key and discards in-flight fetches.
func (c *SnapshotCache[T]) Invalidate(key string) uint64 {
	gen := c.gens.Bump(key)
	c.lru.Delete(key)
	return gen
}

// Cleaner exposes the underlying cache for periodic expiry.
func (c *SnapshotCache[T]) Cleaner() cache.Cleaner {
	return c.lru
}
