package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogrepo "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/repo"
	catalogservice "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	"github.com/ribeiromendes5014-design/netfliz/domains/portal/be/handler"
	portalservice "github.com/ribeiromendes5014-design/netfliz/domains/portal/be/service"
	progressrepo "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/repo"
	progressservice "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

type fixture struct {
	handler *handler.Handler
	catalog *catalogservice.Service
	viewer  tenant.Space
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	catalogSvc := catalogservice.New(catalogrepo.NewMemoryRepository())
	progressSvc := progressservice.New(progressrepo.NewMemoryRepository())
	svc := portalservice.New(
		portalservice.NewBuilder(catalogSvc, progressSvc),
		portalservice.NewCache(time.Minute),
	)

	return fixture{
		handler: handler.New(svc, zap.NewNop()),
		catalog: catalogSvc,
		viewer:  tenant.Space{TenantID: uuid.New(), Slug: "acme-streams"},
	}
}

func (f fixture) get(t *testing.T, withViewer bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/portal", nil)
	if withViewer {
		req = req.WithContext(tenant.WithSpace(req.Context(), f.viewer))
	}
	rec := httptest.NewRecorder()
	f.handler.Portal(rec, req)
	return rec
}

func (f fixture) addMovie(t *testing.T, title, slug, genre string) {
	t.Helper()

	_, err := f.catalog.CreateVideo(context.Background(), catalogservice.CreateVideoInput{
		TenantID:  uuid.New(),
		Title:     title,
		Slug:      slug,
		Genre:     genre,
		SourceURL: "https://cdn.example.com/" + slug + ".mp4",
		Playback:  catalogservice.PlaybackFile,
		Public:    true,
	})
	require.NoError(t, err)
}

func TestPortalAnonymousEmptyCatalog(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.JSONEq(t, `[]`, string(payload["continueMovies"]))
	require.JSONEq(t, `[]`, string(payload["series"]))
	require.JSONEq(t, `{}`, string(payload["moviesByGenre"]))
}

func TestPortalGroupsMoviesByGenre(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addMovie(t, "Heat", "heat", "Acao")

	rec := f.get(t, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		MoviesByGenre map[string][]struct {
			Slug string `json:"slug"`
		} `json:"moviesByGenre"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.MoviesByGenre["acao"], 1)
	require.Equal(t, "heat", payload.MoviesByGenre["acao"][0].Slug)
}

func TestInvalidateCacheRefreshesPayload(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get(t, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"moviesByGenre":{}`)

	f.addMovie(t, "Heat", "heat", "Acao")

	// Still cached: the new movie is invisible until eviction.
	rec = f.get(t, true)
	require.NotContains(t, rec.Body.String(), "heat")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/portal/cache/invalidate", nil)
	req = req.WithContext(tenant.WithSpace(req.Context(), f.viewer))
	inv := httptest.NewRecorder()
	f.handler.InvalidateCache(inv, req)
	require.Equal(t, http.StatusNoContent, inv.Code)

	rec = f.get(t, true)
	require.Contains(t, rec.Body.String(), "heat")
}
