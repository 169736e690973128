package geocode

import (
	"context"
	"strings"
	"sync"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (Point, bool, error)
	Set(ctx context.Context, key string, p Point, ttl time.Duration) error
}

// Cached memoises successful lookups. Cache failures fall through to the
// wrapped geocoder.
type Cached struct {
	next  Geocoder
	cache Cache
	ttl   time.Duration
}

func NewCached(next Geocoder, cache Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl}
}

func (c *Cached) Resolve(ctx context.Context, address string) (Point, error) {
	key := cacheKey(address)
	if p, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return p, nil
	}

	p, err := c.next.Resolve(ctx, address)
	if err != nil {
		return Point{}, err
	}
	_ = c.cache.Set(ctx, key, p, c.ttl)
	return p, nil
}

func cacheKey(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// MemoryCache is a process-local Cache; entries expire after their ttl.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	point   Point
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Point, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return Point{}, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(m.entries, key)
		return Point{}, false, nil
	}
	return e.point, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, p Point, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{point: p}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}
