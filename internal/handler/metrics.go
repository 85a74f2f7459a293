package handler

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /api/v1/admin/metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		writeError(w, http.StatusServiceUnavailable, "METRICS_UNAVAILABLE", "Metrics are not enabled")
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, k := range slices.Sorted(maps.Keys(snap.Generations)) {
		kind, status, _ := strings.Cut(k, ":")
		writeMetric(w, "enhancemyseo_generations_total{kind=%q,status=%q} %d\n", kind, status, snap.Generations[k])
	}
	writeMetric(w, "enhancemyseo_generation_duration_seconds_count %d\n", snap.GenerationDurationCount)
	writeMetric(w, "enhancemyseo_generation_duration_seconds_sum %.6f\n", float64(snap.GenerationDurationTotalNs)/1e9)

	writeLabeled(w, "enhancemyseo_discovery_runs_total", "status", snap.DiscoveryRuns)
	writeMetric(w, "enhancemyseo_discovery_duration_seconds_count %d\n", snap.DiscoveryDurationCount)
	writeMetric(w, "enhancemyseo_discovery_duration_seconds_sum %.6f\n", float64(snap.DiscoveryDurationTotalNs)/1e9)
	writeMetric(w, "enhancemyseo_discovery_cache_hits_total %d\n", snap.DiscoveryCacheHits)
	writeMetric(w, "enhancemyseo_discovery_cache_misses_total %d\n", snap.DiscoveryCacheMisses)

	writeLabeled(w, "enhancemyseo_history_events_published_total", "status", snap.HistoryPublished)
	writeLabeled(w, "enhancemyseo_history_events_processed_total", "status", snap.HistoryProcessed)
	writeMetric(w, "enhancemyseo_history_queue_depth %d\n", snap.HistoryQueueDepth)
	writeMetric(w, "enhancemyseo_history_ingest_lag_seconds %.6f\n", float64(snap.HistoryIngestLagNs)/1e9)
}

// writeLabeled writes one sample per label value, sorted for stable output.
func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
