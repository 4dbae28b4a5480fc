package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SeriesTable      = "series"
	VideosTable      = "videos"
	VideoBlocksTable = "video_blocks"
)

// SeriesRecord represents a row in the series table.
type SeriesRecord struct {
	SeriesID    uuid.UUID `db:"series_id" json:"seriesId"`
	TenantID    uuid.UUID `db:"tenant_id" json:"tenantId"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	CoverURL    string    `db:"cover_url" json:"coverUrl"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// VideoRecord represents a row in the videos table plus its blocklist.
type VideoRecord struct {
	VideoID          uuid.UUID   `db:"video_id" json:"videoId"`
	TenantID         uuid.UUID   `db:"tenant_id" json:"tenantId"`
	SeriesID         *uuid.UUID  `db:"series_id" json:"seriesId,omitempty"`
	SeasonNumber     *int        `db:"season_number" json:"seasonNumber,omitempty"`
	EpisodeNumber    *int        `db:"episode_number" json:"episodeNumber,omitempty"`
	Title            string      `db:"title" json:"title"`
	Slug             string      `db:"slug" json:"slug"`
	Description      string      `db:"description" json:"description"`
	SourceURL        string      `db:"source_url" json:"sourceUrl"`
	Playback         string      `db:"playback" json:"playback"`
	CoverURL         string      `db:"cover_url" json:"coverUrl"`
	Category         string      `db:"category" json:"category"`
	Genre            string      `db:"genre" json:"genre"`
	IsPublic         bool        `db:"is_public" json:"isPublic"`
	Rotate180        bool        `db:"rotate_180" json:"rotate180"`
	BlockedTenantIDs []uuid.UUID `db:"blocked_tenant_ids" json:"blockedTenantIds"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
}

// CatalogStore exposes persistence helpers for series, videos and blocklists.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore returns a store bound to the shared pool.
func NewCatalogStore(pool *pgxpool.Pool) (*CatalogStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &CatalogStore{pool: pool}, nil
}

const videoColumns = `
        v.video_id, v.tenant_id, v.series_id, v.season_number, v.episode_number,
        v.title, v.slug, v.description, v.source_url, v.playback, v.cover_url,
        v.category, v.genre, v.is_public, v.rotate_180, v.created_at,
        COALESCE((
            SELECT array_agg(vb.tenant_id) FROM video_blocks vb WHERE vb.video_id = v.video_id
        ), '{}') AS blocked_tenant_ids`

// ListPublicVideosParams filters the eligible-video listing.
//
// VisibleTo applies per-tenant blocklist filtering. When nil the listing keeps
// only videos with an empty blocklist: without an identity visibility cannot
// be proven, so the conservative rule applies.
type ListPublicVideosParams struct {
	VisibleTo     *uuid.UUID
	OwnerTenantID *uuid.UUID
}

// ListPublicVideos returns public videos eligible for the given viewer,
// newest first.
func (s *CatalogStore) ListPublicVideos(ctx context.Context, params ListPublicVideosParams) ([]VideoRecord, error) {
	whereParts := []string{"v.is_public"}
	var args []any

	if params.VisibleTo != nil {
		args = append(args, *params.VisibleTo)
		whereParts = append(whereParts, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s vb WHERE vb.video_id = v.video_id AND vb.tenant_id = $%d)",
			VideoBlocksTable, len(args)))
	} else {
		whereParts = append(whereParts, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s vb WHERE vb.video_id = v.video_id)", VideoBlocksTable))
	}

	if params.OwnerTenantID != nil {
		args = append(args, *params.OwnerTenantID)
		whereParts = append(whereParts, fmt.Sprintf("v.tenant_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM %s v
        WHERE %s
        ORDER BY v.created_at DESC
    `, videoColumns, VideosTable, strings.Join(whereParts, " AND "))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list public videos: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// GetVideoBySlug returns the newest video owning the slug. Slugs are unique
// per tenant, not globally; playback routes address videos by slug alone, so
// the newest match wins when two tenants reuse one.
func (s *CatalogStore) GetVideoBySlug(ctx context.Context, slug string) (VideoRecord, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM %s v
        WHERE v.slug = $1
        ORDER BY v.created_at DESC
        LIMIT 1
    `, videoColumns, VideosTable)

	row := s.pool.QueryRow(ctx, query, strings.TrimSpace(slug))
	record, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VideoRecord{}, ErrNotFound
		}
		return VideoRecord{}, err
	}
	return record, nil
}

// GetVideo returns a single video by identifier.
func (s *CatalogStore) GetVideo(ctx context.Context, id uuid.UUID) (VideoRecord, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM %s v
        WHERE v.video_id = $1
    `, videoColumns, VideosTable)

	row := s.pool.QueryRow(ctx, query, id)
	record, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VideoRecord{}, ErrNotFound
		}
		return VideoRecord{}, err
	}
	return record, nil
}

// CreateVideoParams captures the fields required to insert a video.
type CreateVideoParams struct {
	VideoID          uuid.UUID
	TenantID         uuid.UUID
	SeriesID         *uuid.UUID
	SeasonNumber     *int
	EpisodeNumber    *int
	Title            string
	Slug             string
	Description      string
	SourceURL        string
	Playback         string
	CoverURL         string
	Category         string
	Genre            string
	IsPublic         bool
	Rotate180        bool
	BlockedTenantIDs []uuid.UUID
}

// CreateVideo inserts a video and its blocklist rows in one transaction.
func (s *CatalogStore) CreateVideo(ctx context.Context, params CreateVideoParams) (VideoRecord, error) {
	if params.VideoID == uuid.Nil {
		return VideoRecord{}, errors.New("video id is required")
	}
	if params.TenantID == uuid.Nil {
		return VideoRecord{}, errors.New("tenant id is required")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return VideoRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (
            video_id, tenant_id, series_id, season_number, episode_number,
            title, slug, description, source_url, playback, cover_url,
            category, genre, is_public, rotate_180
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING video_id, tenant_id, series_id, season_number, episode_number,
                  title, slug, description, source_url, playback, cover_url,
                  category, genre, is_public, rotate_180, created_at, '{}'::uuid[]
    `, VideosTable),
		params.VideoID,
		params.TenantID,
		params.SeriesID,
		params.SeasonNumber,
		params.EpisodeNumber,
		strings.TrimSpace(params.Title),
		strings.TrimSpace(params.Slug),
		params.Description,
		params.SourceURL,
		params.Playback,
		params.CoverURL,
		params.Category,
		params.Genre,
		params.IsPublic,
		params.Rotate180,
	)

	record, err := scanVideo(row)
	if err != nil {
		if isUniqueViolation(err) {
			return VideoRecord{}, ErrConflict
		}
		return VideoRecord{}, err
	}

	for _, blocked := range params.BlockedTenantIDs {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
            INSERT INTO %s (video_id, tenant_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
        `, VideoBlocksTable), record.VideoID, blocked); err != nil {
			return VideoRecord{}, fmt.Errorf("insert video block: %w", err)
		}
		record.BlockedTenantIDs = append(record.BlockedTenantIDs, blocked)
	}

	if err := tx.Commit(ctx); err != nil {
		return VideoRecord{}, fmt.Errorf("commit video: %w", err)
	}

	return record, nil
}

// BlockVideoForTenant adds a tenant to the video's blocklist.
func (s *CatalogStore) BlockVideoForTenant(ctx context.Context, videoID, tenantID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (video_id, tenant_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
    `, VideoBlocksTable), videoID, tenantID)
	if err != nil {
		return fmt.Errorf("block video: %w", err)
	}
	return nil
}

// CreateSeriesParams captures the fields required to insert a series.
type CreateSeriesParams struct {
	SeriesID    uuid.UUID
	TenantID    uuid.UUID
	Title       string
	Slug        string
	Description string
	CoverURL    string
	IsActive    bool
}

// CreateSeries inserts a series and returns the persisted record.
func (s *CatalogStore) CreateSeries(ctx context.Context, params CreateSeriesParams) (SeriesRecord, error) {
	if params.SeriesID == uuid.Nil {
		return SeriesRecord{}, errors.New("series id is required")
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (series_id, tenant_id, title, slug, description, cover_url, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING series_id, tenant_id, title, slug, description, cover_url, is_active, created_at
    `, SeriesTable),
		params.SeriesID,
		params.TenantID,
		strings.TrimSpace(params.Title),
		strings.TrimSpace(params.Slug),
		params.Description,
		params.CoverURL,
		params.IsActive,
	)

	record, err := scanSeries(row)
	if err != nil {
		if isUniqueViolation(err) {
			return SeriesRecord{}, ErrConflict
		}
		return SeriesRecord{}, err
	}

	return record, nil
}

// ListSeriesByIDs returns the series matching ids, optionally restricted to
// active ones, ordered by title.
func (s *CatalogStore) ListSeriesByIDs(ctx context.Context, ids []uuid.UUID, activeOnly bool) ([]SeriesRecord, error) {
	if len(ids) == 0 {
		return []SeriesRecord{}, nil
	}

	where := "series_id = ANY($1)"
	if activeOnly {
		where += " AND is_active"
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT series_id, tenant_id, title, slug, description, cover_url, is_active, created_at
        FROM %s
        WHERE %s
        ORDER BY title
    `, SeriesTable, where), ids)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	records := make([]SeriesRecord, 0, len(ids))
	for rows.Next() {
		record, scanErr := scanSeries(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan series: %w", scanErr)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}

	return records, nil
}

func collectVideos(rows pgx.Rows) ([]VideoRecord, error) {
	records := make([]VideoRecord, 0)
	for rows.Next() {
		record, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return records, nil
}

func scanVideo(row pgx.Row) (VideoRecord, error) {
	var record VideoRecord
	if err := row.Scan(
		&record.VideoID,
		&record.TenantID,
		&record.SeriesID,
		&record.SeasonNumber,
		&record.EpisodeNumber,
		&record.Title,
		&record.Slug,
		&record.Description,
		&record.SourceURL,
		&record.Playback,
		&record.CoverURL,
		&record.Category,
		&record.Genre,
		&record.IsPublic,
		&record.Rotate180,
		&record.CreatedAt,
		&record.BlockedTenantIDs,
	); err != nil {
		return VideoRecord{}, err
	}
	return record, nil
}

func scanSeries(row pgx.Row) (SeriesRecord, error) {
	var record SeriesRecord
	if err := row.Scan(
		&record.SeriesID,
		&record.TenantID,
		&record.Title,
		&record.Slug,
		&record.Description,
		&record.CoverURL,
		&record.IsActive,
		&record.CreatedAt,
	); err != nil {
		return SeriesRecord{}, err
	}
	return record, nil
}
