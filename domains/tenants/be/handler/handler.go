package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/service"
	platformauth "github.com/ribeiromendes5014-design/netfliz/platform/go/auth"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/logging"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/problem"
)

// Handler exposes the session endpoint for tenant portals.
type Handler struct {
	svc    *service.Service
	issuer *platformauth.TokenIssuer
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, issuer *platformauth.TokenIssuer, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tenants service is required")
	}
	if issuer == nil {
		panic("token issuer is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, issuer: issuer, logger: logger}
}

type sessionRequest struct {
	Slug      string `json:"slug"`
	AccessKey string `json:"accessKey"`
}

type sessionResponse struct {
	Token      string `json:"token"`
	TenantSlug string `json:"tenantSlug"`
}

// CreateSession implements POST /api/v1/sessions: exchanges a tenant slug
// plus access key for a signed portal token.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Validation(w, "request body must be JSON", nil)
		return
	}
	if req.Slug == "" || req.AccessKey == "" {
		problem.Validation(w, "slug and accessKey are required", map[string][]string{
			"slug":      {"required"},
			"accessKey": {"required"},
		})
		return
	}

	t, err := h.svc.Authenticate(r.Context(), req.Slug, req.AccessKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidKey):
			// One answer for unknown tenant and bad key.
			problem.Forbidden(w, "invalid tenant or access key")
		default:
			logging.FromRequest(r, h.logger).Error("session create failed", zap.Error(err))
			problem.Internal(w)
		}
		return
	}

	token, err := h.issuer.Issue(t.ID, t.Slug, time.Now().UTC())
	if err != nil {
		logging.FromRequest(r, h.logger).Error("session token issue failed", zap.Error(err))
		problem.Internal(w)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, TenantSlug: t.Slug})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
