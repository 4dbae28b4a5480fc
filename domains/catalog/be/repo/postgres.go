package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/persistence"
)

// PostgresRepository implements the catalog repository on the shared
// persistence layer.
type PostgresRepository struct {
	store *persistence.CatalogStore
}

// NewPostgresRepository constructs a repository backed by CatalogStore.
func NewPostgresRepository(store *persistence.CatalogStore) *PostgresRepository {
	if store == nil {
		panic("catalog store is required")
	}
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) ListPublic(ctx context.Context, visibleTo, ownerID *uuid.UUID) ([]service.Video, error) {
	recs, err := r.store.ListPublicVideos(ctx, persistence.ListPublicVideosParams{
		VisibleTo:     visibleTo,
		OwnerTenantID: ownerID,
	})
	if err != nil {
		return nil, err
	}
	videos := make([]service.Video, 0, len(recs))
	for _, rec := range recs {
		videos = append(videos, toServiceVideo(rec))
	}
	return videos, nil
}

func (r *PostgresRepository) FindVideoBySlug(ctx context.Context, slug string) (service.Video, error) {
	rec, err := r.store.GetVideoBySlug(ctx, slug)
	if err != nil {
		return service.Video{}, mapNotFound(err)
	}
	return toServiceVideo(rec), nil
}

func (r *PostgresRepository) GetVideo(ctx context.Context, id uuid.UUID) (service.Video, error) {
	rec, err := r.store.GetVideo(ctx, id)
	if err != nil {
		return service.Video{}, mapNotFound(err)
	}
	return toServiceVideo(rec), nil
}

func (r *PostgresRepository) CreateVideo(ctx context.Context, v service.Video) (service.Video, error) {
	rec, err := r.store.CreateVideo(ctx, persistence.CreateVideoParams{
		VideoID:          v.ID,
		TenantID:         v.TenantID,
		SeriesID:         v.SeriesID,
		SeasonNumber:     v.SeasonNumber,
		EpisodeNumber:    v.EpisodeNumber,
		Title:            v.Title,
		Slug:             v.Slug,
		Description:      v.Description,
		SourceURL:        v.SourceURL,
		Playback:         string(v.Playback),
		CoverURL:         v.CoverURL,
		Category:         string(v.Category),
		Genre:            v.Genre,
		IsPublic:         v.Public,
		Rotate180:        v.Rotate180,
		BlockedTenantIDs: v.BlockedTenantIDs,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrConflict) {
			return service.Video{}, service.ErrConflictSlug
		}
		return service.Video{}, err
	}
	return toServiceVideo(rec), nil
}

func (r *PostgresRepository) CreateSeries(ctx context.Context, s service.Series) (service.Series, error) {
	rec, err := r.store.CreateSeries(ctx, persistence.CreateSeriesParams{
		SeriesID:    s.ID,
		TenantID:    s.TenantID,
		Title:       s.Title,
		Slug:        s.Slug,
		Description: s.Description,
		CoverURL:    s.CoverURL,
		IsActive:    s.Active,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrConflict) {
			return service.Series{}, service.ErrConflictSlug
		}
		return service.Series{}, err
	}
	return toServiceSeries(rec), nil
}

func (r *PostgresRepository) ListSeriesByIDs(ctx context.Context, ids []uuid.UUID, activeOnly bool) ([]service.Series, error) {
	recs, err := r.store.ListSeriesByIDs(ctx, ids, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]service.Series, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toServiceSeries(rec))
	}
	return out, nil
}

func toServiceVideo(rec persistence.VideoRecord) service.Video {
	return service.Video{
		ID:               rec.VideoID,
		TenantID:         rec.TenantID,
		SeriesID:         rec.SeriesID,
		SeasonNumber:     rec.SeasonNumber,
		EpisodeNumber:    rec.EpisodeNumber,
		Title:            rec.Title,
		Slug:             rec.Slug,
		Description:      rec.Description,
		SourceURL:        rec.SourceURL,
		Playback:         service.ParsePlaybackKind(rec.Playback),
		CoverURL:         rec.CoverURL,
		Category:         service.ParseCategory(rec.Category),
		Genre:            rec.Genre,
		Public:           rec.IsPublic,
		Rotate180:        rec.Rotate180,
		BlockedTenantIDs: rec.BlockedTenantIDs,
		CreatedAt:        rec.CreatedAt,
	}
}

func toServiceSeries(rec persistence.SeriesRecord) service.Series {
	return service.Series{
		ID:          rec.SeriesID,
		TenantID:    rec.TenantID,
		Title:       rec.Title,
		Slug:        rec.Slug,
		Description: rec.Description,
		CoverURL:    rec.CoverURL,
		Active:      rec.IsActive,
		CreatedAt:   rec.CreatedAt,
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return service.ErrNotFound
	}
	return err
}

// Ensure interface compliance.
var _ service.Repository = (*PostgresRepository)(nil)
