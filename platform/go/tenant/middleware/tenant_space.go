package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	platformauth "github.com/ribeiromendes5014-design/netfliz/platform/go/auth"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Resolver defines the minimal lookup capability required to populate a
// tenant Space. Implemented by the tenants service; it must reject inactive
// and subscription-expired tenants.
type Resolver interface {
	ResolveActiveTenant(ctx context.Context, slug string) (tenant.Space, error)
}

// Config controls middleware behavior.
type Config struct {
	// Optional small in-memory TTL cache to avoid DB hits; zero disables caching.
	CacheTTL time.Duration
}

// WithTenantSpace resolves the tenant named by the session claims and attaches
// tenant.Space to the context. Requests without a session pass through without
// a Space: the portal serves anonymous callers the conservative catalog, and
// write handlers reject them.
func WithTenantSpace(resolver Resolver, cfg Config) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant middleware: resolver is required")
	}

	var cache *tenantCache
	if cfg.CacheTTL > 0 {
		cache = newTenantCache(cfg.CacheTTL)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := platformauth.SessionFromContext(r.Context())
			if !ok || claims == nil || claims.TenantSlug == "" {
				next.ServeHTTP(w, r)
				return
			}

			if cached := cache.get(claims.TenantID); cached != nil {
				ctx := tenant.WithSpace(r.Context(), *cached)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			space, err := resolver.ResolveActiveTenant(r.Context(), claims.TenantSlug)
			if err != nil {
				// Sessions outlive subscriptions; an expired or deactivated
				// tenant is turned away here even with a valid token.
				http.Error(w, "tenant not found", http.StatusNotFound)
				return
			}

			cache.put(space)

			ctx := tenant.WithSpace(r.Context(), space)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type tenantCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[uuid.UUID]cacheItem
}

type cacheItem struct {
	space     tenant.Space
	expiresAt time.Time
}

func newTenantCache(ttl time.Duration) *tenantCache {
	return &tenantCache{ttl: ttl, items: make(map[uuid.UUID]cacheItem)}
}

func (c *tenantCache) get(id uuid.UUID) *tenant.Space {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok || time.Now().After(item.expiresAt) {
		return nil
	}
	return &item.space
}

func (c *tenantCache) put(space tenant.Space) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[space.TenantID] = cacheItem{space: space, expiresAt: time.Now().Add(c.ttl)}
}
