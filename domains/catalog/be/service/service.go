package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ribeiromendes5014-design/netfliz/platform/go/persistence"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Errors returned by the service layer.
var (
	ErrNotFound     = errors.New("video not found")
	ErrConflictSlug = errors.New("slug already exists for this owner")
)

// ValidationError carries per-field input problems.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string { return "invalid catalog input" }

// Repository abstracts persistence.
type Repository interface {
	ListPublic(ctx context.Context, visibleTo, ownerID *uuid.UUID) ([]Video, error)
	FindVideoBySlug(ctx context.Context, slug string) (Video, error)
	GetVideo(ctx context.Context, id uuid.UUID) (Video, error)
	CreateVideo(ctx context.Context, v Video) (Video, error)
	CreateSeries(ctx context.Context, s Series) (Series, error)
	ListSeriesByIDs(ctx context.Context, ids []uuid.UUID, activeOnly bool) ([]Series, error)
}

// Service provides catalog operations.
type Service struct {
	repo Repository
}

// New constructs a Service with required dependencies.
func New(repo Repository) *Service {
	if repo == nil {
		panic("catalog repo is required")
	}
	return &Service{repo: repo}
}

// EligibleVideos lists the public videos the viewer may see, newest first.
// A nil viewer gets the anonymous catalog: empty-blocklist videos only.
func (s *Service) EligibleVideos(ctx context.Context, viewer *tenant.Space) ([]Video, error) {
	var visibleTo *uuid.UUID
	if viewer != nil {
		id := viewer.TenantID
		visibleTo = &id
	}
	return s.repo.ListPublic(ctx, visibleTo, nil)
}

// OwnerCatalog lists the public videos owned by a tenant that the tenant
// itself can see. This backs the public landing page for a tenant slug.
func (s *Service) OwnerCatalog(ctx context.Context, ownerID uuid.UUID) ([]Video, error) {
	return s.repo.ListPublic(ctx, &ownerID, &ownerID)
}

// LookupVisible finds a video by slug and enforces the public flag plus the
// viewer's blocklist. Unpublished and hidden videos are indistinguishable
// from missing ones.
func (s *Service) LookupVisible(ctx context.Context, slug string, viewer *tenant.Space) (Video, error) {
	video, err := s.repo.FindVideoBySlug(ctx, slug)
	if err != nil {
		return Video{}, err
	}
	return gateVisible(video, viewer)
}

// GetVisible finds a video by id under the same visibility rules as
// LookupVisible.
func (s *Service) GetVisible(ctx context.Context, id uuid.UUID, viewer *tenant.Space) (Video, error) {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return Video{}, err
	}
	return gateVisible(video, viewer)
}

func gateVisible(video Video, viewer *tenant.Space) (Video, error) {
	if !video.Public {
		return Video{}, ErrNotFound
	}

	var viewerID *uuid.UUID
	if viewer != nil {
		id := viewer.TenantID
		viewerID = &id
	}
	if !video.IsVisibleTo(viewerID) {
		return Video{}, ErrNotFound
	}
	return video, nil
}

// SeriesByIDs returns the active series among ids.
func (s *Service) SeriesByIDs(ctx context.Context, ids []uuid.UUID) ([]Series, error) {
	return s.repo.ListSeriesByIDs(ctx, ids, true)
}

// CreateVideoInput represents the request to register a video.
type CreateVideoInput struct {
	TenantID      uuid.UUID
	SeriesID      *uuid.UUID
	SeasonNumber  *int
	EpisodeNumber *int
	Title         string
	Slug          string
	Description   string
	SourceURL     string
	Playback      PlaybackKind
	CoverURL      string
	Category      Category
	Genre         string
	Public        bool
	Rotate180     bool
	BlockedIDs    []uuid.UUID
}

// CreateVideo registers a video. The source URL is normalized, and any video
// attached to a series is forced into the series category regardless of
// what the caller sent.
func (s *Service) CreateVideo(ctx context.Context, input CreateVideoInput) (Video, error) {
	fields := map[string][]string{}
	if input.TenantID == uuid.Nil {
		fields["tenantId"] = append(fields["tenantId"], "required")
	}
	if input.Title == "" {
		fields["title"] = append(fields["title"], "required")
	}
	slug, err := persistence.NormalizeSlug(input.Slug)
	if err != nil {
		fields["slug"] = append(fields["slug"], err.Error())
	}
	if len(fields) > 0 {
		return Video{}, &ValidationError{Fields: fields}
	}

	category := ParseCategory(string(input.Category))
	if input.SeriesID != nil {
		category = CategorySeries
	}

	video := Video{
		ID:               uuid.New(),
		TenantID:         input.TenantID,
		SeriesID:         input.SeriesID,
		SeasonNumber:     input.SeasonNumber,
		EpisodeNumber:    input.EpisodeNumber,
		Title:            input.Title,
		Slug:             slug,
		Description:      input.Description,
		SourceURL:        NormalizeSourceURL(input.SourceURL),
		Playback:         ParsePlaybackKind(string(input.Playback)),
		CoverURL:         input.CoverURL,
		Category:         category,
		Genre:            input.Genre,
		Public:           input.Public,
		Rotate180:        input.Rotate180,
		BlockedTenantIDs: input.BlockedIDs,
	}

	return s.repo.CreateVideo(ctx, video)
}

// CreateSeriesInput represents the request to register a series.
type CreateSeriesInput struct {
	TenantID    uuid.UUID
	Title       string
	Slug        string
	Description string
	CoverURL    string
	Active      bool
}

// CreateSeries registers a series. An empty slug is derived from the title.
func (s *Service) CreateSeries(ctx context.Context, input CreateSeriesInput) (Series, error) {
	fields := map[string][]string{}
	if input.TenantID == uuid.Nil {
		fields["tenantId"] = append(fields["tenantId"], "required")
	}
	if input.Title == "" {
		fields["title"] = append(fields["title"], "required")
	}

	slug := input.Slug
	if slug == "" {
		slug = persistence.Slugify(input.Title)
	}
	normalized, err := persistence.NormalizeSlug(slug)
	if err != nil {
		fields["slug"] = append(fields["slug"], err.Error())
	}
	if len(fields) > 0 {
		return Series{}, &ValidationError{Fields: fields}
	}

	series := Series{
		ID:          uuid.New(),
		TenantID:    input.TenantID,
		Title:       input.Title,
		Slug:        normalized,
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Active:      input.Active,
	}

	return s.repo.CreateSeries(ctx, series)
}
