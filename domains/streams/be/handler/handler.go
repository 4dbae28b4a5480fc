package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogservice "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	"github.com/ribeiromendes5014-design/netfliz/domains/streams/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/logging"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/metrics"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/problem"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Handler exposes the streaming proxy and the live channel resolver.
type Handler struct {
	drive    *service.DriveResolver
	channels *service.ChannelResolver
	catalog  *catalogservice.Service
	logger   *zap.Logger
}

// New constructs a Handler instance.
func New(drive *service.DriveResolver, channels *service.ChannelResolver, catalog *catalogservice.Service, logger *zap.Logger) *Handler {
	if drive == nil {
		panic("drive resolver is required")
	}
	if channels == nil {
		panic("channel resolver is required")
	}
	if catalog == nil {
		panic("catalog service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{drive: drive, channels: channels, catalog: catalog, logger: logger}
}

// DriveProxy implements GET /stream/drive. It relays the remote file to the
// client, preserving the upstream content type and length.
func (h *Handler) DriveProxy(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("id")
	if fileID == "" {
		metrics.StreamResolutions.WithLabelValues("drive", "missing_id").Inc()
		problem.NotFound(w, "file id is required")
		return
	}

	stream, err := h.drive.Open(r.Context(), fileID)
	if err != nil {
		metrics.StreamResolutions.WithLabelValues("drive", "failure").Inc()
		if errors.Is(err, service.ErrNotFound) {
			problem.NotFound(w, "remote file not found")
			return
		}
		logging.FromRequest(r, h.logger).Error("drive resolve failed", zap.String("file_id", fileID), zap.Error(err))
		problem.Upstream(w, "remote file fetch failed")
		return
	}
	defer stream.Body.Close()
	metrics.StreamResolutions.WithLabelValues("drive", "success").Inc()

	if stream.ContentType != "" {
		w.Header().Set("Content-Type", stream.ContentType)
	}
	if stream.ContentLength > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", stream.ContentLength))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fileID))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, stream.Body); err != nil {
		// Client hung up mid-stream; nothing to answer anymore.
		logging.FromRequest(r, h.logger).Debug("drive relay interrupted", zap.Error(err))
	}
}

type channelStreamResponse struct {
	URL string `json:"url"`
}

// ChannelStream implements GET /api/v1/tv-channels/{videoID}/stream. It
// fetches the channel page live and hands back the current playlist URL.
func (h *Handler) ChannelStream(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "videoID"))
	if err != nil {
		problem.NotFound(w, "channel not found")
		return
	}

	var viewer *tenant.Space
	if space, ok := tenant.FromContext(r.Context()); ok {
		viewer = &space
	}

	video, err := h.catalog.GetVisible(r.Context(), videoID, viewer)
	if err != nil {
		if errors.Is(err, catalogservice.ErrNotFound) {
			problem.NotFound(w, "channel not found")
			return
		}
		logging.FromRequest(r, h.logger).Error("channel lookup failed", zap.Error(err))
		problem.Internal(w)
		return
	}

	streamURL, err := h.channels.Resolve(r.Context(), video.SourceURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoStream):
			metrics.StreamResolutions.WithLabelValues("channel", "no_stream").Inc()
			problem.NotFound(w, "no live stream on this channel right now")
		default:
			metrics.StreamResolutions.WithLabelValues("channel", "failure").Inc()
			logging.FromRequest(r, h.logger).Warn("channel resolve failed",
				zap.String("video_id", videoID.String()), zap.Error(err))
			problem.Upstream(w, "channel page fetch failed")
		}
		return
	}
	metrics.StreamResolutions.WithLabelValues("channel", "success").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(channelStreamResponse{URL: streamURL})
}
