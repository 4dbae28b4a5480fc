package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/service"
)

// MemoryRepository is an in-memory tenant repository for tests and local
// development without a database.
type MemoryRepository struct {
	mu     sync.RWMutex
	bySlug map[string]service.Tenant
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bySlug: make(map[string]service.Tenant)}
}

func (r *MemoryRepository) Create(ctx context.Context, t service.Tenant) (service.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bySlug[t.Slug]; exists {
		return service.Tenant{}, service.ErrConflictSlug
	}
	r.bySlug[t.Slug] = t
	return t, nil
}

func (r *MemoryRepository) FindBySlug(ctx context.Context, slug string) (service.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.bySlug[slug]
	if !ok {
		return service.Tenant{}, service.ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySlug[slug]
	return ok, nil
}

func (r *MemoryRepository) ListActive(ctx context.Context) ([]service.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenants := make([]service.Tenant, 0, len(r.bySlug))
	for _, t := range r.bySlug {
		if t.Active {
			tenants = append(tenants, t)
		}
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].CreatedAt.Before(tenants[j].CreatedAt) })
	return tenants, nil
}

// Ensure interface compliance.
var _ service.Repository = (*MemoryRepository)(nil)
