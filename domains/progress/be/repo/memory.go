package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
)

type progressKey struct {
	tenantID uuid.UUID
	videoID  uuid.UUID
}

// MemoryRepository is an in-memory progress repository for tests and local
// development without a database.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[progressKey]service.Progress
	now  func() time.Time
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[progressKey]service.Progress), now: time.Now}
}

// SetClock overrides the timestamp source, for tests that assert ordering.
func (r *MemoryRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryRepository) Upsert(ctx context.Context, tenantID, videoID uuid.UUID, position float64) (service.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := service.Progress{
		TenantID:  tenantID,
		VideoID:   videoID,
		Position:  position,
		UpdatedAt: r.now().UTC(),
	}
	r.rows[progressKey{tenantID, videoID}] = row
	return row, nil
}

func (r *MemoryRepository) Get(ctx context.Context, tenantID, videoID uuid.UUID) (service.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[progressKey{tenantID, videoID}]
	if !ok {
		return service.Progress{}, service.ErrNotFound
	}
	return row, nil
}

func (r *MemoryRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]service.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]service.Progress, 0)
	for key, row := range r.rows {
		if key.tenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, tenantID, videoID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey{tenantID, videoID}
	_, ok := r.rows[key]
	delete(r.rows, key)
	return ok, nil
}

// Ensure interface compliance.
var _ service.Repository = (*MemoryRepository)(nil)
