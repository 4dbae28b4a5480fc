package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ribeiromendes5014-design/netfliz/domains/portal/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/logging"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/problem"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Handler exposes the portal payload endpoints.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("portal service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Portal implements GET /api/v1/portal.
func (h *Handler) Portal(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r)

	payload, err := h.svc.Portal(r.Context(), viewer)
	if err != nil {
		logging.FromRequest(r, h.logger).Error("portal build failed", zap.Error(err))
		problem.Internal(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

// InvalidateCache implements POST /api/v1/portal/cache/invalidate. It only
// evicts the caller's own slot.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.svc.Invalidate(viewerFromContext(r))
	w.WriteHeader(http.StatusNoContent)
}

func viewerFromContext(r *http.Request) *tenant.Space {
	space, ok := tenant.FromContext(r.Context())
	if !ok {
		return nil
	}
	return &space
}
