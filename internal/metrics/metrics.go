// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Generation kinds.
const (
	KindArticle = "articles"
	KindKeyword = "keywords"
	KindProduct = "products"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Content generation metrics
	IncGeneration(kind, status string) // status: "success", "failed", "limited"
	ObserveGenerationDuration(kind string, duration time.Duration)

	// Discovery metrics
	IncDiscoveryRun(status string) // status: "live", "cached", "failed"
	ObserveDiscoveryDuration(duration time.Duration)
	IncDiscoveryCacheHit()
	IncDiscoveryCacheMiss()

	// History pipeline metrics
	IncHistoryEventPublished(status string) // status: "success" or "dropped"
	IncHistoryEventProcessed(status string) // status: "success", "failed", "dead_lettered"
	ObserveHistoryBatchSize(size int)
	ObserveHistoryBatchDuration(duration time.Duration)
	SetHistoryQueueDepth(depth int64)
	ObserveHistoryIngestLag(lag time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
