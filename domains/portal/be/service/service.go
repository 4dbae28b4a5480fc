package service

import (
	"context"
	"time"

	"github.com/ribeiromendes5014-design/netfliz/platform/go/metrics"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/tenant"
)

// Service provides cached portal payloads.
type Service struct {
	builder *Builder
	cache   *Cache
}

// New constructs a Service with required dependencies.
func New(builder *Builder, cache *Cache) *Service {
	if builder == nil {
		panic("portal builder is required")
	}
	if cache == nil {
		panic("portal cache is required")
	}
	return &Service{builder: builder, cache: cache}
}

// Portal returns the viewer's portal payload, served from cache when a
// fresh entry exists. Payloads are keyed by tenant slug; sessionless
// callers share one anonymous slot.
func (s *Service) Portal(ctx context.Context, viewer *tenant.Space) (Payload, error) {
	return s.cache.GetOrBuild(ctx, cacheKey(viewer), func(ctx context.Context) (Payload, error) {
		start := time.Now()
		payload, err := s.builder.Build(ctx, viewer)
		if err != nil {
			return Payload{}, err
		}
		metrics.PortalBuildDuration.Observe(time.Since(start).Seconds())
		return payload, nil
	})
}

// Invalidate evicts the viewer's cache entry. Owners call this after bulk
// catalog edits instead of waiting out the TTL.
func (s *Service) Invalidate(viewer *tenant.Space) {
	s.cache.Invalidate(cacheKey(viewer))
}

func cacheKey(viewer *tenant.Space) string {
	if viewer == nil {
		return AnonymousCacheKey
	}
	return viewer.Slug
}
