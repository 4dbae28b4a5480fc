package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/persistence"
)

// PostgresRepository implements the progress repository on the shared
// persistence layer.
type PostgresRepository struct {
	store *persistence.ProgressStore
}

// NewPostgresRepository constructs a repository backed by ProgressStore.
func NewPostgresRepository(store *persistence.ProgressStore) *PostgresRepository {
	if store == nil {
		panic("progress store is required")
	}
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) Upsert(ctx context.Context, tenantID, videoID uuid.UUID, position float64) (service.Progress, error) {
	rec, err := r.store.UpsertProgress(ctx, tenantID, videoID, position)
	if err != nil {
		return service.Progress{}, err
	}
	return toServiceProgress(rec), nil
}

func (r *PostgresRepository) Get(ctx context.Context, tenantID, videoID uuid.UUID) (service.Progress, error) {
	rec, err := r.store.GetProgress(ctx, tenantID, videoID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return service.Progress{}, service.ErrNotFound
		}
		return service.Progress{}, err
	}
	return toServiceProgress(rec), nil
}

func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]service.Progress, error) {
	recs, err := r.store.ListProgressByTenant(ctx, tenantID, nil)
	if err != nil {
		return nil, err
	}
	out := make([]service.Progress, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toServiceProgress(rec))
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, tenantID, videoID uuid.UUID) (bool, error) {
	return r.store.DeleteProgress(ctx, tenantID, videoID)
}

func toServiceProgress(rec persistence.ProgressRecord) service.Progress {
	return service.Progress{
		TenantID:  rec.TenantID,
		VideoID:   rec.VideoID,
		Position:  rec.Position,
		UpdatedAt: rec.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ service.Repository = (*PostgresRepository)(nil)
