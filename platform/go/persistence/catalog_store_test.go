package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startTestDatabase boots a disposable Postgres, applies the embedded schema
// and returns a connected pool. Tests that need a real database share it.
func startTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping store integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("netfliz"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() { ClosePool(pool) })

	require.NoError(t, BootstrapSchema(ctx, pool))

	return pool
}

func TestStoresRoundTrip(t *testing.T) {
	t.Parallel()

	pool := startTestDatabase(t)
	ctx := context.Background()

	tenants, err := NewTenantStore(pool)
	require.NoError(t, err)
	catalog, err := NewCatalogStore(pool)
	require.NoError(t, err)
	progress, err := NewProgressStore(pool)
	require.NoError(t, err)

	alpha, err := tenants.CreateTenant(ctx, CreateTenantParams{
		TenantID: uuid.New(),
		Slug:     "tenant-alpha",
		IsActive: true,
	})
	require.NoError(t, err)

	beta, err := tenants.CreateTenant(ctx, CreateTenantParams{
		TenantID: uuid.New(),
		Slug:     "tenant-beta",
		IsActive: true,
	})
	require.NoError(t, err)

	// Duplicated slug maps to ErrConflict.
	_, err = tenants.CreateTenant(ctx, CreateTenantParams{TenantID: uuid.New(), Slug: "tenant-alpha", IsActive: true})
	require.ErrorIs(t, err, ErrConflict)

	movie, err := catalog.CreateVideo(ctx, CreateVideoParams{
		VideoID:   uuid.New(),
		TenantID:  alpha.TenantID,
		Title:     "Alpha Movie",
		Slug:      "alpha-movie",
		SourceURL: "https://cdn.example.com/alpha.mp4",
		Playback:  "mp4",
		Category:  "movie",
		Genre:     "drama",
		IsPublic:  true,
	})
	require.NoError(t, err)

	_, err = catalog.CreateVideo(ctx, CreateVideoParams{
		VideoID:          uuid.New(),
		TenantID:         alpha.TenantID,
		Title:            "Hidden From Beta",
		Slug:             "hidden-from-beta",
		SourceURL:        "https://cdn.example.com/hidden.mp4",
		Playback:         "mp4",
		Category:         "movie",
		IsPublic:         true,
		BlockedTenantIDs: []uuid.UUID{beta.TenantID},
	})
	require.NoError(t, err)

	// Beta never sees the blocked video, alpha does.
	betaVideos, err := catalog.ListPublicVideos(ctx, ListPublicVideosParams{VisibleTo: &beta.TenantID})
	require.NoError(t, err)
	require.Len(t, betaVideos, 1)
	require.Equal(t, movie.VideoID, betaVideos[0].VideoID)

	alphaVideos, err := catalog.ListPublicVideos(ctx, ListPublicVideosParams{VisibleTo: &alpha.TenantID})
	require.NoError(t, err)
	require.Len(t, alphaVideos, 2)

	// Anonymous callers only see videos with an empty blocklist.
	anonVideos, err := catalog.ListPublicVideos(ctx, ListPublicVideosParams{})
	require.NoError(t, err)
	require.Len(t, anonVideos, 1)
	require.Equal(t, movie.VideoID, anonVideos[0].VideoID)

	fetched, err := catalog.GetVideoBySlug(ctx, "hidden-from-beta")
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{beta.TenantID}, fetched.BlockedTenantIDs)

	// Upsert twice keeps a single row and last position.
	_, err = progress.UpsertProgress(ctx, beta.TenantID, movie.VideoID, 12.5)
	require.NoError(t, err)
	updated, err := progress.UpsertProgress(ctx, beta.TenantID, movie.VideoID, 99)
	require.NoError(t, err)
	require.InDelta(t, 99, updated.Position, 0.001)

	rowsForBeta, err := progress.ListProgressByTenant(ctx, beta.TenantID, nil)
	require.NoError(t, err)
	require.Len(t, rowsForBeta, 1)

	removed, err := progress.DeleteProgress(ctx, beta.TenantID, movie.VideoID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = progress.DeleteProgress(ctx, beta.TenantID, movie.VideoID)
	require.NoError(t, err)
	require.False(t, removed)
}
