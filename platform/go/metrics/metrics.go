// Package metrics provides Prometheus instrumentation for the portal service.
// Register-once package-level collectors; expose them with Handler() at
// GET /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PortalCacheHits counts portal payload cache hits.
var PortalCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "netfliz_portal_cache_hits_total",
	Help: "Portal payload cache hits.",
})

// PortalCacheMisses counts portal payload cache misses.
var PortalCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "netfliz_portal_cache_misses_total",
	Help: "Portal payload cache misses (each triggers a rebuild).",
})

// PortalBuildDuration tracks how long a full payload build takes.
var PortalBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "netfliz_portal_build_duration_seconds",
	Help:    "Portal payload build latency in seconds.",
	Buckets: prometheus.DefBuckets,
})

// StreamResolutions counts remote stream resolutions by kind and outcome.
var StreamResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "netfliz_stream_resolutions_total",
	Help: "Remote stream resolutions by kind (drive, channel) and outcome.",
}, []string{"kind", "outcome"})

// ProgressWrites counts resume-position reports and resets.
var ProgressWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "netfliz_progress_writes_total",
	Help: "Progress writes by operation (report, reset).",
}, []string{"operation"})

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
