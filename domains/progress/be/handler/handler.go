package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	catalogservice "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	"github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/logging"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/metrics"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/problem"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Handler exposes playback progress endpoints.
type Handler struct {
	svc     *service.Service
	catalog *catalogservice.Service
	logger  *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, catalog *catalogservice.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("progress service is required")
	}
	if catalog == nil {
		panic("catalog service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, catalog: catalog, logger: logger}
}

type progressResponse struct {
	Position float64 `json:"position"`
}

type resetResponse struct {
	Reset bool `json:"reset"`
}

// Report implements POST /api/v1/videos/{videoSlug}/progress.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	space, ok := tenant.FromContext(r.Context())
	if !ok {
		problem.Forbidden(w, "a tenant session is required to track progress")
		return
	}

	video, ok := h.resolveVideo(w, r, &space)
	if !ok {
		return
	}

	position := readPosition(r)
	stored, err := h.svc.Report(r.Context(), space.TenantID, video.ID, position)
	if err != nil {
		logging.FromRequest(r, h.logger).Error("progress report failed", zap.Error(err))
		problem.Internal(w)
		return
	}
	metrics.ProgressWrites.WithLabelValues("report").Inc()

	writeJSON(w, http.StatusOK, progressResponse{Position: stored.Position})
}

// Reset implements POST /api/v1/videos/{videoSlug}/progress/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	space, ok := tenant.FromContext(r.Context())
	if !ok {
		problem.Forbidden(w, "a tenant session is required to track progress")
		return
	}

	video, ok := h.resolveVideo(w, r, &space)
	if !ok {
		return
	}

	existed, err := h.svc.Reset(r.Context(), space.TenantID, video.ID)
	if err != nil {
		logging.FromRequest(r, h.logger).Error("progress reset failed", zap.Error(err))
		problem.Internal(w)
		return
	}
	metrics.ProgressWrites.WithLabelValues("reset").Inc()

	writeJSON(w, http.StatusOK, resetResponse{Reset: existed})
}

func (h *Handler) resolveVideo(w http.ResponseWriter, r *http.Request, space *tenant.Space) (catalogservice.Video, bool) {
	slug := chi.URLParam(r, "videoSlug")
	video, err := h.catalog.LookupVisible(r.Context(), slug, space)
	if err != nil {
		if errors.Is(err, catalogservice.ErrNotFound) {
			problem.NotFound(w, "video not found")
		} else {
			logging.FromRequest(r, h.logger).Error("video lookup failed", zap.Error(err))
			problem.Internal(w)
		}
		return catalogservice.Video{}, false
	}
	return video, true
}

// readPosition accepts {"position": 12.5} as well as {"position": "12.5"}.
// Malformed bodies report position 0 rather than failing: players fire
// these beacons during teardown and cannot retry.
func readPosition(r *http.Request) float64 {
	var body struct {
		Position json.RawMessage `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return 0
	}
	raw := strings.Trim(strings.TrimSpace(string(body.Position)), `"`)
	return service.ParsePosition(raw)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
