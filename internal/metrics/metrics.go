// Package metrics provides Prometheus metrics for the playback engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Disk cache metrics
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riptide_cache_lookups_total",
			Help: "Disk cache lookups by result",
		},
		[]string{"result"},
	)

	cacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riptide_cache_evictions_total",
			Help: "Entries evicted from the disk cache",
		},
	)

	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "riptide_cache_entries",
			Help: "Number of entries in the disk cache",
		},
	)

	cacheBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riptide_cache_bytes_downloaded_total",
			Help: "Total bytes downloaded into the disk cache",
		},
	)

	cacheStoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riptide_cache_stores_total",
			Help: "Disk cache fill attempts by status",
		},
		[]string{"status"},
	)

	downloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riptide_download_duration_seconds",
			Help:    "Duration of audio downloads",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Playback metrics
	playbackStartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riptide_playback_starts_total",
			Help: "Playback start attempts by status",
		},
		[]string{"status"},
	)

	seeksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riptide_seeks_total",
			Help: "Seeks by strategy",
		},
		[]string{"strategy"},
	)

	seekDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "riptide_seek_duration_seconds",
			Help:    "Time spent seeking, by strategy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	eventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riptide_events_dropped_total",
			Help: "Events dropped because a subscriber fell behind",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCacheLookup records a cache lookup.
func RecordCacheLookup(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCacheEviction records an evicted entry.
func RecordCacheEviction() {
	cacheEvictionsTotal.Inc()
}

// SetCacheEntries sets the current number of cache entries.
func SetCacheEntries(n int) {
	cacheEntries.Set(float64(n))
}

// RecordCacheStore records a cache fill.
func RecordCacheStore(bytes int64, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	cacheStoresTotal.WithLabelValues(status).Inc()
	if success {
		cacheBytesDownloaded.Add(float64(bytes))
	}
	downloadDuration.Observe(duration.Seconds())
}

// RecordPlaybackStart records a PlayItem outcome.
func RecordPlaybackStart(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	playbackStartsTotal.WithLabelValues(status).Inc()
}

// RecordSeek records a completed seek.
func RecordSeek(strategy string, duration time.Duration) {
	seeksTotal.WithLabelValues(strategy).Inc()
	seekDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordEventDropped records an event dropped on subscriber overflow.
func RecordEventDropped() {
	eventsDroppedTotal.Inc()
}
