package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
)

// MemoryRepository is an in-memory catalog repository for tests and local
// development without a database.
type MemoryRepository struct {
	mu     sync.RWMutex
	videos map[uuid.UUID]service.Video
	series map[uuid.UUID]service.Series
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		videos: make(map[uuid.UUID]service.Video),
		series: make(map[uuid.UUID]service.Series),
	}
}

func (r *MemoryRepository) ListPublic(ctx context.Context, visibleTo, ownerID *uuid.UUID) ([]service.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]service.Video, 0, len(r.videos))
	for _, v := range r.videos {
		if !v.Public {
			continue
		}
		if !v.IsVisibleTo(visibleTo) {
			continue
		}
		if ownerID != nil && v.TenantID != *ownerID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) FindVideoBySlug(ctx context.Context, slug string) (service.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *service.Video
	for _, v := range r.videos {
		if v.Slug != slug {
			continue
		}
		if found == nil || v.CreatedAt.After(found.CreatedAt) {
			copied := v
			found = &copied
		}
	}
	if found == nil {
		return service.Video{}, service.ErrNotFound
	}
	return *found, nil
}

func (r *MemoryRepository) GetVideo(ctx context.Context, id uuid.UUID) (service.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.videos[id]
	if !ok {
		return service.Video{}, service.ErrNotFound
	}
	return v, nil
}

func (r *MemoryRepository) CreateVideo(ctx context.Context, v service.Video) (service.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.videos {
		if existing.TenantID == v.TenantID && existing.Slug == v.Slug {
			return service.Video{}, service.ErrConflictSlug
		}
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	r.videos[v.ID] = v
	return v, nil
}

// SetCreatedAt rewrites a stored video's creation time, for tests that
// depend on upload order.
func (r *MemoryRepository) SetCreatedAt(id uuid.UUID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.videos[id]; ok {
		v.CreatedAt = at
		r.videos[id] = v
	}
}

func (r *MemoryRepository) CreateSeries(ctx context.Context, s service.Series) (service.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.series {
		if existing.TenantID == s.TenantID && existing.Slug == s.Slug {
			return service.Series{}, service.ErrConflictSlug
		}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.series[s.ID] = s
	return s, nil
}

func (r *MemoryRepository) ListSeriesByIDs(ctx context.Context, ids []uuid.UUID, activeOnly bool) ([]service.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]service.Series, 0, len(ids))
	for _, id := range ids {
		s, ok := r.series[id]
		if !ok {
			continue
		}
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Ensure interface compliance.
var _ service.Repository = (*MemoryRepository)(nil)
