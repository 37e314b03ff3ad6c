// Package metrics provides Prometheus metrics for the image service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RenderTotal counts renders by profile and outcome.
	RenderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dynimage",
			Name:      "render_total",
			Help:      "Total number of image renders",
		},
		[]string{"profile", "status"},
	)

	// RenderDuration measures pipeline runs that were not served from cache.
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dynimage",
			Name:      "render_duration_seconds",
			Help:      "Duration of pipeline executions in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"profile"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dynimage",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dynimage",
			Name:      "cache_entries",
			Help:      "Number of entries held by the result cache",
		},
	)
)

// RecordRender records one render request.
func RecordRender(profile, status string) {
	RenderTotal.WithLabelValues(profile, status).Inc()
}

func RecordRenderDuration(profile string, seconds float64) {
	RenderDuration.WithLabelValues(profile).Observe(seconds)
}

// RecordCacheLookup records a hit, miss or bypass.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

func SetCacheEntries(n int) {
	CacheEntries.Set(float64(n))
}
