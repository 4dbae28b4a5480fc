package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	catalogrepo "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/repo"
	catalogservice "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	progressrepo "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/repo"
	progressservice "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

type builderFixture struct {
	catalog      *catalogservice.Service
	catalogRepo  *catalogrepo.MemoryRepository
	progress     *progressservice.Service
	progressRepo *progressrepo.MemoryRepository
	builder      *Builder
	viewer       *tenant.Space
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()

	catalogRepo := catalogrepo.NewMemoryRepository()
	progressRepo := progressrepo.NewMemoryRepository()
	catalogSvc := catalogservice.New(catalogRepo)
	progressSvc := progressservice.New(progressRepo)

	return &builderFixture{
		catalog:      catalogSvc,
		catalogRepo:  catalogRepo,
		progress:     progressSvc,
		progressRepo: progressRepo,
		builder:      NewBuilder(catalogSvc, progressSvc),
		viewer:       &tenant.Space{TenantID: uuid.New(), Slug: "viewer"},
	}
}

func (f *builderFixture) addVideo(t *testing.T, input catalogservice.CreateVideoInput) catalogservice.Video {
	t.Helper()
	if input.TenantID == uuid.Nil {
		input.TenantID = f.viewer.TenantID
	}
	if input.SourceURL == "" {
		input.SourceURL = "https://cdn.example.com/" + input.Slug + ".mp4"
	}
	input.Public = true
	created, err := f.catalog.CreateVideo(context.Background(), input)
	require.NoError(t, err)
	return created
}

func TestBuildEmptyCatalog(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)

	payload, err := f.builder.Build(context.Background(), f.viewer)
	require.NoError(t, err)

	require.NotNil(t, payload.ProgressByVideo)
	require.Empty(t, payload.ProgressByVideo)
	require.NotNil(t, payload.ContinueMovies)
	require.Empty(t, payload.ContinueMovies)
	require.NotNil(t, payload.Series)
	require.Empty(t, payload.Series)
	require.NotNil(t, payload.TVChannels)
	require.Empty(t, payload.TVChannels)
	require.NotNil(t, payload.MoviesByGenre)
	require.Empty(t, payload.MoviesByGenre)
	require.False(t, payload.GeneratedAt.IsZero())
}

func TestBuildGenreBuckets(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)

	f.addVideo(t, catalogservice.CreateVideoInput{Title: "Heist", Slug: "heist", Genre: "Acao"})
	f.addVideo(t, catalogservice.CreateVideoInput{Title: "Chase", Slug: "chase", Genre: "acao"})
	f.addVideo(t, catalogservice.CreateVideoInput{Title: "Untagged", Slug: "untagged"})

	payload, err := f.builder.Build(context.Background(), f.viewer)
	require.NoError(t, err)

	require.Len(t, payload.MoviesByGenre["acao"], 2)
	require.Len(t, payload.MoviesByGenre[fallbackGenre], 1)
	require.Equal(t, "Untagged", payload.MoviesByGenre[fallbackGenre][0].Title)
}

func TestBuildSplitsTVChannels(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)

	f.addVideo(t, catalogservice.CreateVideoInput{
		Title:    "News 24",
		Slug:     "news-24",
		Category: catalogservice.CategoryTV,
		Playback: catalogservice.PlaybackAdaptive,
	})
	f.addVideo(t, catalogservice.CreateVideoInput{Title: "Some Movie", Slug: "some-movie"})

	payload, err := f.builder.Build(context.Background(), f.viewer)
	require.NoError(t, err)

	require.Len(t, payload.TVChannels, 1)
	require.Equal(t, "news-24", payload.TVChannels[0].Slug)
	require.Equal(t, "application/x-mpegURL", payload.TVChannels[0].StreamMIME)
	require.Len(t, payload.MoviesByGenre[fallbackGenre], 1)
}

func TestBuildGroupsSeriesAndOrdersEpisodes(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)
	ctx := context.Background()

	active, err := f.catalog.CreateSeries(ctx, catalogservice.CreateSeriesInput{
		TenantID: f.viewer.TenantID,
		Title:    "Deep Space",
		Active:   true,
	})
	require.NoError(t, err)
	paused, err := f.catalog.CreateSeries(ctx, catalogservice.CreateSeriesInput{
		TenantID: f.viewer.TenantID,
		Title:    "Shelved Show",
		Active:   false,
	})
	require.NoError(t, err)

	season2 := 2
	epTwo := 2
	epOne := 1

	// Uploaded out of order on purpose.
	f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "S2 Finale", Slug: "ds-s2-e2", SeriesID: &active.ID,
		SeasonNumber: &season2, EpisodeNumber: &epTwo,
	})
	f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "Pilot", Slug: "ds-pilot", SeriesID: &active.ID, EpisodeNumber: &epOne,
	})
	f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "S2 Opener", Slug: "ds-s2-e1", SeriesID: &active.ID,
		SeasonNumber: &season2, EpisodeNumber: &epOne,
	})
	f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "Lost Episode", Slug: "shelved-1", SeriesID: &paused.ID,
	})

	payload, err := f.builder.Build(ctx, f.viewer)
	require.NoError(t, err)

	// The paused series and its episode vanish without error.
	require.Len(t, payload.Series, 1)
	group := payload.Series[0]
	require.Equal(t, "Deep Space", group.Title)
	require.Equal(t, []int{1, 2}, group.Seasons)

	require.Len(t, group.Episodes, 3)
	require.Equal(t, "ds-pilot", group.Episodes[0].Slug)
	require.Equal(t, "ds-s2-e1", group.Episodes[1].Slug)
	require.Equal(t, "ds-s2-e2", group.Episodes[2].Slug)

	require.Equal(t, "S01 • E01", group.Episodes[0].EpisodeLabel)
	require.Equal(t, "S02 • E01", group.Episodes[1].EpisodeLabel)
	require.Equal(t, "S02 • E02", group.Episodes[2].EpisodeLabel)
}

func TestBuildNumbersUnnumberedEpisodesByUploadOrder(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)
	ctx := context.Background()

	series, err := f.catalog.CreateSeries(ctx, catalogservice.CreateSeriesInput{
		TenantID: f.viewer.TenantID,
		Title:    "Raw Uploads",
		Active:   true,
	})
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		created := f.addVideo(t, catalogservice.CreateVideoInput{
			Title:    fmt.Sprintf("Upload %d", i+1),
			Slug:     fmt.Sprintf("raw-%d", i+1),
			SeriesID: &series.ID,
		})
		// Pin distinct creation times so upload order is unambiguous.
		f.overrideCreatedAt(t, created.ID, base.Add(time.Duration(i)*time.Hour))
	}

	payload, err := f.builder.Build(ctx, f.viewer)
	require.NoError(t, err)
	require.Len(t, payload.Series, 1)

	episodes := payload.Series[0].Episodes
	require.Len(t, episodes, 3)
	require.Equal(t, "S01 • E01", episodes[0].EpisodeLabel)
	require.Equal(t, "S01 • E02", episodes[1].EpisodeLabel)
	require.Equal(t, "S01 • E03", episodes[2].EpisodeLabel)
	require.Equal(t, "raw-1", episodes[0].Slug)
	require.Equal(t, "raw-3", episodes[2].Slug)
}

func TestBuildContinueWatching(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)
	ctx := context.Background()

	series, err := f.catalog.CreateSeries(ctx, catalogservice.CreateSeriesInput{
		TenantID: f.viewer.TenantID,
		Title:    "Bingeable",
		Active:   true,
	})
	require.NoError(t, err)

	movie := f.addVideo(t, catalogservice.CreateVideoInput{Title: "Movie", Slug: "cw-movie"})
	episode := f.addVideo(t, catalogservice.CreateVideoInput{Title: "Episode", Slug: "cw-episode", SeriesID: &series.ID})
	channel := f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "Channel", Slug: "cw-channel", Category: catalogservice.CategoryTV,
	})
	unwatched := f.addVideo(t, catalogservice.CreateVideoInput{Title: "Fresh", Slug: "cw-fresh"})

	clock := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	f.progressRepo.SetClock(func() time.Time { return clock })

	_, err = f.progress.Report(ctx, f.viewer.TenantID, movie.ID, 120)
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = f.progress.Report(ctx, f.viewer.TenantID, episode.ID, 61)
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = f.progress.Report(ctx, f.viewer.TenantID, channel.ID, 5)
	require.NoError(t, err)
	// Zero positions never surface as resumable, but the row still joins
	// into the progress map.
	_, err = f.progress.Report(ctx, f.viewer.TenantID, unwatched.ID, 0)
	require.NoError(t, err)

	payload, err := f.builder.Build(ctx, f.viewer)
	require.NoError(t, err)

	require.Len(t, payload.ContinueMovies, 1)
	require.Equal(t, "cw-movie", payload.ContinueMovies[0].Slug)
	require.Equal(t, "2:00", payload.ContinueMovies[0].ResumeLabel)

	require.Len(t, payload.ContinueSeries, 1)
	require.Equal(t, "1:01", payload.ContinueSeries[0].ResumeLabel)

	require.Len(t, payload.ContinueTV, 1)

	require.Equal(t, map[uuid.UUID]float64{
		movie.ID:     120,
		episode.ID:   61,
		channel.ID:   5,
		unwatched.ID: 0,
	}, payload.ProgressByVideo)
}

func TestBuildContinueWatchingCapBeforeSplit(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)
	ctx := context.Background()

	clock := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	f.progressRepo.SetClock(func() time.Time { return clock })

	// 25 recently watched movies, then one older TV channel.
	channel := f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "Old Channel", Slug: "old-channel", Category: catalogservice.CategoryTV,
	})
	_, err := f.progress.Report(ctx, f.viewer.TenantID, channel.ID, 30)
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		clock = clock.Add(time.Minute)
		movie := f.addVideo(t, catalogservice.CreateVideoInput{
			Title: fmt.Sprintf("Movie %d", i), Slug: fmt.Sprintf("cap-movie-%d", i),
		})
		_, err := f.progress.Report(ctx, f.viewer.TenantID, movie.ID, 60)
		require.NoError(t, err)
	}

	payload, err := f.builder.Build(ctx, f.viewer)
	require.NoError(t, err)

	// The cap applies to the combined list: the stale channel falls off
	// entirely even though its category is otherwise empty.
	require.Len(t, payload.ContinueMovies, continueWatchingLimit)
	require.Empty(t, payload.ContinueTV)
}

func TestBuildAnonymousViewer(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)
	ctx := context.Background()

	f.addVideo(t, catalogservice.CreateVideoInput{Title: "Open", Slug: "anon-open"})
	f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "Guarded", Slug: "anon-guarded", BlockedIDs: []uuid.UUID{uuid.New()},
	})

	payload, err := f.builder.Build(ctx, nil)
	require.NoError(t, err)

	// Only the video with an empty blocklist is provably visible.
	require.Len(t, payload.MoviesByGenre[fallbackGenre], 1)
	require.Equal(t, "anon-open", payload.MoviesByGenre[fallbackGenre][0].Slug)
	require.Empty(t, payload.ProgressByVideo)
	require.Empty(t, payload.ContinueMovies)
}

func TestBuildDropsOrphanedSeriesVideos(t *testing.T) {
	t.Parallel()
	f := newBuilderFixture(t)
	ctx := context.Background()

	// A series-category video with no series attached (its series was
	// deleted) belongs to no rail.
	orphan := f.addVideo(t, catalogservice.CreateVideoInput{
		Title: "Orphan", Slug: "orphan-episode", Category: catalogservice.CategorySeries,
	})
	f.addVideo(t, catalogservice.CreateVideoInput{Title: "Movie", Slug: "plain-movie"})

	_, err := f.progress.Report(ctx, f.viewer.TenantID, orphan.ID, 42)
	require.NoError(t, err)

	payload, err := f.builder.Build(ctx, f.viewer)
	require.NoError(t, err)

	require.Empty(t, payload.Series)
	require.Empty(t, payload.TVChannels)
	require.Empty(t, payload.ContinueMovies)
	require.Empty(t, payload.ContinueTV)
	require.Empty(t, payload.ContinueSeries)
	require.Len(t, payload.MoviesByGenre[fallbackGenre], 1)
	require.Equal(t, "plain-movie", payload.MoviesByGenre[fallbackGenre][0].Slug)

	// The orphan's progress row still joins into the progress map.
	require.Equal(t, 42.0, payload.ProgressByVideo[orphan.ID])
}

// overrideCreatedAt rewrites a stored video's creation time through the
// memory repository.
func (f *builderFixture) overrideCreatedAt(t *testing.T, id uuid.UUID, at time.Time) {
	t.Helper()
	f.catalogRepo.SetCreatedAt(id, at)
}
