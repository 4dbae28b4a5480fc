package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogservice "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	progressservice "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Genre bucket for videos whose owner never set one.
const fallbackGenre = "outro"

// Cap on resume entries, applied before the category split.
const continueWatchingLimit = 20

// CatalogSource feeds eligible videos and series metadata to the builder.
type CatalogSource interface {
	EligibleVideos(ctx context.Context, viewer *tenant.Space) ([]catalogservice.Video, error)
	SeriesByIDs(ctx context.Context, ids []uuid.UUID) ([]catalogservice.Series, error)
}

// ProgressSource feeds stored resume positions to the builder.
type ProgressSource interface {
	ByTenant(ctx context.Context, tenantID uuid.UUID) ([]progressservice.Progress, error)
}

// Builder assembles a tenant's portal payload from the catalog and the
// tenant's resume positions.
type Builder struct {
	catalog  CatalogSource
	progress ProgressSource
	now      func() time.Time
}

// NewBuilder constructs a Builder with required dependencies.
func NewBuilder(catalog CatalogSource, progress ProgressSource) *Builder {
	if catalog == nil {
		panic("catalog source is required")
	}
	if progress == nil {
		panic("progress source is required")
	}
	return &Builder{catalog: catalog, progress: progress, now: time.Now}
}

// Build assembles the payload for the viewer. A nil viewer produces the
// anonymous portal: conservative catalog, no resume data.
func (b *Builder) Build(ctx context.Context, viewer *tenant.Space) (Payload, error) {
	payload := emptyPayload(b.now().UTC())

	videos, err := b.catalog.EligibleVideos(ctx, viewer)
	if err != nil {
		return Payload{}, err
	}
	if len(videos) == 0 {
		return payload, nil
	}

	progressRows, err := b.loadProgress(ctx, viewer)
	if err != nil {
		return Payload{}, err
	}

	var episodic []Entry
	episodicVideos := make(map[uuid.UUID]catalogservice.Video)

	for _, video := range videos {
		entry := toEntry(video, progressRows[video.ID].Position)
		if row, ok := progressRows[video.ID]; ok {
			payload.ProgressByVideo[video.ID] = row.Position
		}

		if video.SeriesID != nil {
			episodic = append(episodic, entry)
			episodicVideos[video.ID] = video
			continue
		}

		// Standalone videos bucket strictly by category. A series-category
		// video with no series attached (the series was deleted) belongs to
		// no rail and drops out.
		switch video.Category {
		case catalogservice.CategoryTV:
			payload.TVChannels = append(payload.TVChannels, entry)
		case catalogservice.CategoryMovie:
			genre := genreBucket(video.Genre)
			payload.MoviesByGenre[genre] = append(payload.MoviesByGenre[genre], entry)
		}
	}

	payload.Series, err = b.groupSeries(ctx, episodic, episodicVideos)
	if err != nil {
		return Payload{}, err
	}

	b.fillContinueWatching(&payload, videos, progressRows)

	return payload, nil
}

func (b *Builder) loadProgress(ctx context.Context, viewer *tenant.Space) (map[uuid.UUID]progressservice.Progress, error) {
	rows := map[uuid.UUID]progressservice.Progress{}
	if viewer == nil {
		return rows, nil
	}

	stored, err := b.progress.ByTenant(ctx, viewer.TenantID)
	if err != nil {
		return nil, err
	}
	for _, row := range stored {
		rows[row.VideoID] = row
	}
	return rows, nil
}

// groupSeries buckets episodic entries under their series. Episodes whose
// series is missing or inactive drop out silently: an owner pausing a series
// hides its episodes without touching them.
func (b *Builder) groupSeries(ctx context.Context, episodic []Entry, videos map[uuid.UUID]catalogservice.Video) ([]SeriesGroup, error) {
	if len(episodic) == 0 {
		return []SeriesGroup{}, nil
	}

	seen := map[uuid.UUID]struct{}{}
	ids := make([]uuid.UUID, 0)
	for _, entry := range episodic {
		if _, ok := seen[*entry.SeriesID]; !ok {
			seen[*entry.SeriesID] = struct{}{}
			ids = append(ids, *entry.SeriesID)
		}
	}

	activeSeries, err := b.catalog.SeriesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	episodesBySeries := map[uuid.UUID][]Entry{}
	for _, entry := range episodic {
		episodesBySeries[*entry.SeriesID] = append(episodesBySeries[*entry.SeriesID], entry)
	}

	groups := make([]SeriesGroup, 0, len(activeSeries))
	for _, s := range activeSeries {
		episodes := orderEpisodes(episodesBySeries[s.ID])

		seasonSet := map[int]struct{}{}
		for i := range episodes {
			seasonSet[effectiveSeason(episodes[i])] = struct{}{}
		}
		seasons := make([]int, 0, len(seasonSet))
		for season := range seasonSet {
			seasons = append(seasons, season)
		}
		sort.Ints(seasons)

		groups = append(groups, SeriesGroup{
			ID:          s.ID,
			Title:       s.Title,
			Slug:        s.Slug,
			Description: s.Description,
			CoverURL:    s.CoverURL,
			Seasons:     seasons,
			Episodes:    episodes,
		})
	}

	return groups, nil
}

// orderEpisodes sorts a series' episodes by season, then episode, then
// creation time. Episodes without an explicit number take their 1-based
// position in upload order, so unnumbered uploads keep a stable sequence.
func orderEpisodes(episodes []Entry) []Entry {
	byUpload := make([]Entry, len(episodes))
	copy(byUpload, episodes)
	sort.SliceStable(byUpload, func(i, j int) bool {
		return byUpload[i].CreatedAt.Before(byUpload[j].CreatedAt)
	})

	type ranked struct {
		entry   Entry
		season  int
		episode int
	}
	rankedEpisodes := make([]ranked, 0, len(byUpload))
	for i, entry := range byUpload {
		season := effectiveSeason(entry)
		episode := i + 1
		if entry.EpisodeNumber != nil {
			episode = *entry.EpisodeNumber
		}
		entry.EpisodeLabel = FormatEpisodeLabel(season, episode)
		rankedEpisodes = append(rankedEpisodes, ranked{entry: entry, season: season, episode: episode})
	}

	sort.SliceStable(rankedEpisodes, func(i, j int) bool {
		a, b := rankedEpisodes[i], rankedEpisodes[j]
		if a.season != b.season {
			return a.season < b.season
		}
		if a.episode != b.episode {
			return a.episode < b.episode
		}
		return a.entry.CreatedAt.Before(b.entry.CreatedAt)
	})

	out := make([]Entry, 0, len(rankedEpisodes))
	for _, r := range rankedEpisodes {
		out = append(out, r.entry)
	}
	return out
}

func effectiveSeason(entry Entry) int {
	if entry.SeasonNumber != nil {
		return *entry.SeasonNumber
	}
	return 1
}

// fillContinueWatching picks the most recently watched entries. The cap
// applies to the combined list before the category split, so one binge
// category can crowd out the others.
func (b *Builder) fillContinueWatching(payload *Payload, videos []catalogservice.Video, progressRows map[uuid.UUID]progressservice.Progress) {
	type resumed struct {
		video catalogservice.Video
		row   progressservice.Progress
	}

	candidates := make([]resumed, 0)
	for _, video := range videos {
		row, ok := progressRows[video.ID]
		if !ok || row.Position <= 0 {
			continue
		}
		candidates = append(candidates, resumed{video: video, row: row})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].row.UpdatedAt.After(candidates[j].row.UpdatedAt)
	})
	if len(candidates) > continueWatchingLimit {
		candidates = candidates[:continueWatchingLimit]
	}

	for _, c := range candidates {
		entry := toEntry(c.video, c.row.Position)
		switch {
		case c.video.SeriesID != nil:
			payload.ContinueSeries = append(payload.ContinueSeries, entry)
		case c.video.Category == catalogservice.CategoryTV:
			payload.ContinueTV = append(payload.ContinueTV, entry)
		case c.video.Category == catalogservice.CategoryMovie:
			payload.ContinueMovies = append(payload.ContinueMovies, entry)
		}
	}
}

func toEntry(video catalogservice.Video, position float64) Entry {
	entry := Entry{
		ID:             video.ID,
		Title:          video.Title,
		Slug:           video.Slug,
		Description:    video.Description,
		CoverURL:       video.CoverURL,
		Category:       string(video.Category),
		Genre:          video.Genre,
		Playback:       string(video.Playback),
		StreamMIME:     video.Playback.StreamMIME(),
		Rotate180:      video.Rotate180,
		SeriesID:       video.SeriesID,
		SeasonNumber:   video.SeasonNumber,
		EpisodeNumber:  video.EpisodeNumber,
		ResumePosition: position,
		ResumeLabel:    FormatDurationLabel(position),
		CreatedAt:      video.CreatedAt,
	}
	return entry
}

func genreBucket(genre string) string {
	cleaned := strings.ToLower(strings.TrimSpace(genre))
	if cleaned == "" {
		return fallbackGenre
	}
	return cleaned
}
