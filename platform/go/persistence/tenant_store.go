package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const TenantsTable = "tenants"

// TenantRecord represents a row in the tenants table.
type TenantRecord struct {
	TenantID     uuid.UUID       `db:"tenant_id" json:"tenantId"`
	Slug         string          `db:"slug" json:"slug"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	AccessEndsAt *time.Time      `db:"access_ends_at" json:"accessEndsAt,omitempty"`
	Metadata     json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// TenantStore exposes persistence helpers for the tenants table.
type TenantStore struct {
	pool *pgxpool.Pool
}

// NewTenantStore returns a store bound to the shared pool.
func NewTenantStore(pool *pgxpool.Pool) (*TenantStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &TenantStore{pool: pool}, nil
}

// CreateTenantParams captures the fields required to insert a tenant record.
type CreateTenantParams struct {
	TenantID     uuid.UUID
	Slug         string
	IsActive     bool
	AccessEndsAt *time.Time
	Metadata     json.RawMessage
}

// CreateTenant inserts a new tenant and returns the persisted record.
func (s *TenantStore) CreateTenant(ctx context.Context, params CreateTenantParams) (TenantRecord, error) {
	if params.TenantID == uuid.Nil {
		return TenantRecord{}, errors.New("tenant id is required")
	}

	metadata := params.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (tenant_id, slug, is_active, access_ends_at, metadata)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING tenant_id, slug, is_active, access_ends_at, metadata, created_at
    `, TenantsTable),
		params.TenantID,
		strings.TrimSpace(params.Slug),
		params.IsActive,
		params.AccessEndsAt,
		metadata,
	)

	record, err := scanTenant(row)
	if err != nil {
		if isUniqueViolation(err) {
			return TenantRecord{}, ErrConflict
		}
		return TenantRecord{}, err
	}

	return record, nil
}

// GetTenantBySlug returns the tenant owning the given slug.
func (s *TenantStore) GetTenantBySlug(ctx context.Context, slug string) (TenantRecord, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT tenant_id, slug, is_active, access_ends_at, metadata, created_at
        FROM %s WHERE slug = $1
    `, TenantsTable), strings.TrimSpace(slug))

	record, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TenantRecord{}, ErrNotFound
		}
		return TenantRecord{}, err
	}

	return record, nil
}

// TenantSlugExists reports whether any tenant already owns the slug.
func (s *TenantStore) TenantSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)
    `, TenantsTable), strings.TrimSpace(slug)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tenant slug: %w", err)
	}
	return exists, nil
}

// ListActiveTenants returns active tenants ordered by creation time.
func (s *TenantStore) ListActiveTenants(ctx context.Context) ([]TenantRecord, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT tenant_id, slug, is_active, access_ends_at, metadata, created_at
        FROM %s WHERE is_active ORDER BY created_at
    `, TenantsTable))
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	records := make([]TenantRecord, 0)
	for rows.Next() {
		record, scanErr := scanTenant(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan tenant: %w", scanErr)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}

	return records, nil
}

func scanTenant(row pgx.Row) (TenantRecord, error) {
	var record TenantRecord
	if err := row.Scan(
		&record.TenantID,
		&record.Slug,
		&record.IsActive,
		&record.AccessEndsAt,
		&record.Metadata,
		&record.CreatedAt,
	); err != nil {
		return TenantRecord{}, err
	}
	return record, nil
}
