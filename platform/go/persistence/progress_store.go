package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ProgressTable = "video_progress"

// ProgressRecord represents a row in the video_progress table.
type ProgressRecord struct {
	TenantID  uuid.UUID `db:"tenant_id" json:"tenantId"`
	VideoID   uuid.UUID `db:"video_id" json:"videoId"`
	Position  float64   `db:"position" json:"position"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ProgressStore exposes persistence helpers for the video_progress table.
type ProgressStore struct {
	pool *pgxpool.Pool
}

// NewProgressStore returns a store bound to the shared pool.
func NewProgressStore(pool *pgxpool.Pool) (*ProgressStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &ProgressStore{pool: pool}, nil
}

// UpsertProgress records the playback position for (tenant, video). The
// ON CONFLICT clause keeps the operation atomic under concurrent reports from
// multiple devices: one row per pair, last write wins.
func (s *ProgressStore) UpsertProgress(ctx context.Context, tenantID, videoID uuid.UUID, position float64) (ProgressRecord, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (tenant_id, video_id, position, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (tenant_id, video_id)
        DO UPDATE SET position = EXCLUDED.position, updated_at = NOW()
        RETURNING tenant_id, video_id, position, updated_at
    `, ProgressTable), tenantID, videoID, position)

	record, err := scanProgress(row)
	if err != nil {
		return ProgressRecord{}, fmt.Errorf("upsert progress: %w", err)
	}
	return record, nil
}

// ListProgressByTenant returns the tenant's progress rows, optionally
// restricted to a video set.
func (s *ProgressStore) ListProgressByTenant(ctx context.Context, tenantID uuid.UUID, videoIDs []uuid.UUID) ([]ProgressRecord, error) {
	query := fmt.Sprintf(`
        SELECT tenant_id, video_id, position, updated_at
        FROM %s WHERE tenant_id = $1
    `, ProgressTable)
	args := []any{tenantID}

	if videoIDs != nil {
		args = append(args, videoIDs)
		query += fmt.Sprintf(" AND video_id = ANY($%d)", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	records := make([]ProgressRecord, 0)
	for rows.Next() {
		record, scanErr := scanProgress(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan progress: %w", scanErr)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}

	return records, nil
}

// GetProgress returns the progress row for (tenant, video).
func (s *ProgressStore) GetProgress(ctx context.Context, tenantID, videoID uuid.UUID) (ProgressRecord, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT tenant_id, video_id, position, updated_at
        FROM %s WHERE tenant_id = $1 AND video_id = $2
    `, ProgressTable), tenantID, videoID)

	record, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProgressRecord{}, ErrNotFound
		}
		return ProgressRecord{}, err
	}
	return record, nil
}

// DeleteProgress removes the progress row for (tenant, video). It reports
// whether a row existed.
func (s *ProgressStore) DeleteProgress(ctx context.Context, tenantID, videoID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
        DELETE FROM %s WHERE tenant_id = $1 AND video_id = $2
    `, ProgressTable), tenantID, videoID)
	if err != nil {
		return false, fmt.Errorf("delete progress: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProgress(row pgx.Row) (ProgressRecord, error) {
	var record ProgressRecord
	if err := row.Scan(&record.TenantID, &record.VideoID, &record.Position, &record.UpdatedAt); err != nil {
		return ProgressRecord{}, err
	}
	return record, nil
}
