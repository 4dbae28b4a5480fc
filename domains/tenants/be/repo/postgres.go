package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/persistence"
)

// PostgresRepository implements the tenant repository on the shared
// persistence layer.
type PostgresRepository struct {
	store *persistence.TenantStore
}

// NewPostgresRepository constructs a repository backed by TenantStore.
func NewPostgresRepository(store *persistence.TenantStore) *PostgresRepository {
	if store == nil {
		panic("tenant store is required")
	}
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) Create(ctx context.Context, t service.Tenant) (service.Tenant, error) {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return service.Tenant{}, fmt.Errorf("encode tenant metadata: %w", err)
	}

	rec, err := r.store.CreateTenant(ctx, persistence.CreateTenantParams{
		TenantID:     t.ID,
		Slug:         t.Slug,
		IsActive:     t.Active,
		AccessEndsAt: t.AccessEndsAt,
		Metadata:     metadata,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrConflict) {
			return service.Tenant{}, service.ErrConflictSlug
		}
		return service.Tenant{}, err
	}
	return toServiceTenant(rec)
}

func (r *PostgresRepository) FindBySlug(ctx context.Context, slug string) (service.Tenant, error) {
	rec, err := r.store.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return service.Tenant{}, service.ErrNotFound
		}
		return service.Tenant{}, err
	}
	return toServiceTenant(rec)
}

func (r *PostgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.store.TenantSlugExists(ctx, slug)
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]service.Tenant, error) {
	recs, err := r.store.ListActiveTenants(ctx)
	if err != nil {
		return nil, err
	}
	tenants := make([]service.Tenant, 0, len(recs))
	for _, rec := range recs {
		t, err := toServiceTenant(rec)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func toServiceTenant(rec persistence.TenantRecord) (service.Tenant, error) {
	metadata := map[string]string{}
	if len(rec.Metadata) > 0 {
		if err := json.Unmarshal(rec.Metadata, &metadata); err != nil {
			return service.Tenant{}, fmt.Errorf("decode tenant metadata %s: %w", rec.TenantID, err)
		}
	}
	return service.Tenant{
		ID:           rec.TenantID,
		Slug:         rec.Slug,
		Active:       rec.IsActive,
		AccessEndsAt: rec.AccessEndsAt,
		Metadata:     metadata,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// Ensure interface compliance.
var _ service.Repository = (*PostgresRepository)(nil)
