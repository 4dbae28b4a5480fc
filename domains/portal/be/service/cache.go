package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ribeiromendes5014-design/netfliz/platform/go/metrics"
)

// DefaultCacheTTL is how long a built payload is served before a rebuild.
const DefaultCacheTTL = 15 * time.Minute

// AnonymousCacheKey is the shared cache slot for sessionless callers.
const AnonymousCacheKey = "__anonymous__"

type cacheEntry struct {
	payload   Payload
	expiresAt time.Time
}

// Cache holds built portal payloads per tenant slug. Entries live for a
// fixed TTL; catalog and progress writes do NOT evict them, so viewers can
// see up to TTL-old data. Concurrent misses for one key collapse into a
// single build.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache constructs a cache. ttl defaults to DefaultCacheTTL when zero.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry)}
}

// GetOrBuild returns the cached payload for key, building and storing a
// fresh one when absent or expired.
func (c *Cache) GetOrBuild(ctx context.Context, key string, build func(ctx context.Context) (Payload, error)) (Payload, error) {
	if payload, ok := c.lookup(key); ok {
		metrics.PortalCacheHits.Inc()
		return payload, nil
	}
	metrics.PortalCacheMisses.Inc()

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent builder may have filled the slot while this call
		// waited on the flight group.
		if payload, ok := c.lookup(key); ok {
			return payload, nil
		}

		payload, err := build(ctx)
		if err != nil {
			return Payload{}, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{payload: payload, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()

		return payload, nil
	})
	if err != nil {
		return Payload{}, err
	}
	return result.(Payload), nil
}

// Invalidate drops the entry for key, forcing the next call to rebuild.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) lookup(key string) (Payload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return Payload{}, false
	}
	return entry.payload, true
}
