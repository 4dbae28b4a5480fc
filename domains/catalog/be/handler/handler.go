package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	portalservice "github.com/ribeiromendes5014-design/netfliz/domains/portal/be/service"
	progressservice "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
	streamsservice "github.com/ribeiromendes5014-design/netfliz/domains/streams/be/service"
	tenantsservice "github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/logging"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/problem"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// TenantResolver looks up an active tenant by slug.
type TenantResolver interface {
	ResolveActiveTenant(ctx context.Context, slug string) (tenant.Space, error)
}

// Handler exposes catalog read endpoints.
type Handler struct {
	svc      *service.Service
	progress *progressservice.Service
	tenants  TenantResolver
	logger   *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, progress *progressservice.Service, tenants TenantResolver, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("catalog service is required")
	}
	if progress == nil {
		panic("progress service is required")
	}
	if tenants == nil {
		panic("tenant resolver is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, progress: progress, tenants: tenants, logger: logger}
}

type watchResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Slug           string  `json:"slug"`
	Description    string  `json:"description"`
	CoverURL       string  `json:"coverUrl"`
	Category       string  `json:"category"`
	Playback       string  `json:"playback"`
	SourceURL      string  `json:"sourceUrl"`
	StreamMIME     string  `json:"streamMime"`
	Rotate180      bool    `json:"rotate180"`
	ResumePosition float64 `json:"resumePosition"`
	ResumeLabel    string  `json:"resumeLabel"`
}

// Watch implements GET /api/v1/watch/{videoSlug}: the playback descriptor
// for one video. Drive share links are rewritten onto the local streaming
// proxy so the player never talks to Drive directly.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	var viewer *tenant.Space
	if space, ok := tenant.FromContext(r.Context()); ok {
		viewer = &space
	}

	video, err := h.svc.LookupVisible(r.Context(), chi.URLParam(r, "videoSlug"), viewer)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			problem.NotFound(w, "video not found")
			return
		}
		logging.FromRequest(r, h.logger).Error("watch lookup failed", zap.Error(err))
		problem.Internal(w)
		return
	}

	var position float64
	if viewer != nil {
		position, err = h.progress.Position(r.Context(), viewer.TenantID, video.ID)
		if err != nil {
			logging.FromRequest(r, h.logger).Error("resume position lookup failed", zap.Error(err))
			problem.Internal(w)
			return
		}
	}

	sourceURL := video.SourceURL
	if video.Playback.UsesVideoElement() {
		sourceURL = streamsservice.RewritePlaybackSource(sourceURL)
	}

	writeJSON(w, http.StatusOK, watchResponse{
		ID:             video.ID.String(),
		Title:          video.Title,
		Slug:           video.Slug,
		Description:    video.Description,
		CoverURL:       video.CoverURL,
		Category:       string(video.Category),
		Playback:       string(video.Playback),
		SourceURL:      sourceURL,
		StreamMIME:     video.Playback.StreamMIME(),
		Rotate180:      video.Rotate180,
		ResumePosition: position,
		ResumeLabel:    portalservice.FormatDurationLabel(position),
	})
}

type publicCatalogEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	Category    string `json:"category"`
	Genre       string `json:"genre"`
}

type publicCatalogResponse struct {
	TenantSlug string               `json:"tenantSlug"`
	Videos     []publicCatalogEntry `json:"videos"`
}

// PublicCatalog implements GET /api/v1/tenants/{slug}/public: the landing
// catalog for a tenant, no session required. Unknown, disabled and expired
// tenants all answer 404.
func (h *Handler) PublicCatalog(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	space, err := h.tenants.ResolveActiveTenant(r.Context(), slug)
	if err != nil {
		if errors.Is(err, tenantsservice.ErrNotFound) {
			problem.NotFound(w, "tenant not found")
			return
		}
		logging.FromRequest(r, h.logger).Error("tenant resolve failed", zap.Error(err))
		problem.Internal(w)
		return
	}

	videos, err := h.svc.OwnerCatalog(r.Context(), space.TenantID)
	if err != nil {
		logging.FromRequest(r, h.logger).Error("public catalog failed", zap.Error(err))
		problem.Internal(w)
		return
	}

	entries := make([]publicCatalogEntry, 0, len(videos))
	for _, v := range videos {
		entries = append(entries, publicCatalogEntry{
			ID:          v.ID.String(),
			Title:       v.Title,
			Slug:        v.Slug,
			Description: v.Description,
			CoverURL:    v.CoverURL,
			Category:    string(v.Category),
			Genre:       v.Genre,
		})
	}

	writeJSON(w, http.StatusOK, publicCatalogResponse{TenantSlug: space.Slug, Videos: entries})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
