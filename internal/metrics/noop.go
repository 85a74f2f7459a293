package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncGeneration is a no-op.
func (n *NoopRecorder) IncGeneration(kind, status string) {}

// ObserveGenerationDuration is a no-op.
func (n *NoopRecorder) ObserveGenerationDuration(kind string, duration time.Duration) {}

// IncDiscoveryRun is a no-op.
func (n *NoopRecorder) IncDiscoveryRun(status string) {}

// ObserveDiscoveryDuration is a no-op.
func (n *NoopRecorder) ObserveDiscoveryDuration(duration time.Duration) {}

// IncDiscoveryCacheHit is a no-op.
func (n *NoopRecorder) IncDiscoveryCacheHit() {}

// IncDiscoveryCacheMiss is a no-op.
func (n *NoopRecorder) IncDiscoveryCacheMiss() {}

// IncHistoryEventPublished is a no-op.
func (n *NoopRecorder) IncHistoryEventPublished(status string) {}

// IncHistoryEventProcessed is a no-op.
func (n *NoopRecorder) IncHistoryEventProcessed(status string) {}

// ObserveHistoryBatchSize is a no-op.
func (n *NoopRecorder) ObserveHistoryBatchSize(size int) {}

// ObserveHistoryBatchDuration is a no-op.
func (n *NoopRecorder) ObserveHistoryBatchDuration(duration time.Duration) {}

// SetHistoryQueueDepth is a no-op.
func (n *NoopRecorder) SetHistoryQueueDepth(depth int64) {}

// ObserveHistoryIngestLag is a no-op.
func (n *NoopRecorder) ObserveHistoryIngestLag(lag time.Duration) {}
