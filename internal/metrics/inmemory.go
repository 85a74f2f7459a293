package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Generations               map[string]uint64 `json:"generations"`
	GenerationDurationCount   uint64            `json:"generation_duration_count"`
	GenerationDurationTotalNs int64             `json:"generation_duration_total_ns"`
	DiscoveryRuns             map[string]uint64 `json:"discovery_runs"`
	DiscoveryDurationCount    uint64            `json:"discovery_duration_count"`
	DiscoveryDurationTotalNs  int64             `json:"discovery_duration_total_ns"`
	DiscoveryCacheHits        uint64            `json:"discovery_cache_hits"`
	DiscoveryCacheMisses      uint64            `json:"discovery_cache_misses"`
	HistoryPublished          map[string]uint64 `json:"history_published"`
	HistoryProcessed          map[string]uint64 `json:"history_processed"`
	HistoryQueueDepth         int64             `json:"history_queue_depth"`
	HistoryIngestLagNs        int64             `json:"history_ingest_lag_ns"`
}

// InMemoryRecorder stores metrics in memory for tests and the admin
// metrics endpoint.
type InMemoryRecorder struct {
	generationDurationCount   uint64
	generationDurationTotalNs int64
	discoveryDurationCount    uint64
	discoveryDurationTotalNs  int64
	discoveryCacheHits        uint64
	discoveryCacheMisses      uint64
	historyQueueDepth         int64
	historyIngestLagNs        int64

	mu               sync.Mutex
	generations      map[string]uint64
	discoveryRuns    map[string]uint64
	historyPublished map[string]uint64
	historyProcessed map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		generations:      make(map[string]uint64),
		discoveryRuns:    make(map[string]uint64),
		historyPublished: make(map[string]uint64),
		historyProcessed: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Generations:               copyCounts(m.generations),
		GenerationDurationCount:   atomic.LoadUint64(&m.generationDurationCount),
		GenerationDurationTotalNs: atomic.LoadInt64(&m.generationDurationTotalNs),
		DiscoveryRuns:             copyCounts(m.discoveryRuns),
		DiscoveryDurationCount:    atomic.LoadUint64(&m.discoveryDurationCount),
		DiscoveryDurationTotalNs:  atomic.LoadInt64(&m.discoveryDurationTotalNs),
		DiscoveryCacheHits:        atomic.LoadUint64(&m.discoveryCacheHits),
		DiscoveryCacheMisses:      atomic.LoadUint64(&m.discoveryCacheMisses),
		HistoryPublished:          copyCounts(m.historyPublished),
		HistoryProcessed:          copyCounts(m.historyProcessed),
		HistoryQueueDepth:         atomic.LoadInt64(&m.historyQueueDepth),
		HistoryIngestLagNs:        atomic.LoadInt64(&m.historyIngestLagNs),
	}
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

// IncGeneration counts a generation attempt by kind and status.
func (m *InMemoryRecorder) IncGeneration(kind, status string) {
	m.inc(m.generations, kind+":"+status)
}

// ObserveGenerationDuration records generation latency.
func (m *InMemoryRecorder) ObserveGenerationDuration(kind string, duration time.Duration) {
	atomic.AddUint64(&m.generationDurationCount, 1)
	atomic.AddInt64(&m.generationDurationTotalNs, duration.Nanoseconds())
}

// IncDiscoveryRun counts a discovery request by outcome.
func (m *InMemoryRecorder) IncDiscoveryRun(status string) {
	m.inc(m.discoveryRuns, status)
}

// ObserveDiscoveryDuration records discovery latency.
func (m *InMemoryRecorder) ObserveDiscoveryDuration(duration time.Duration) {
	atomic.AddUint64(&m.discoveryDurationCount, 1)
	atomic.AddInt64(&m.discoveryDurationTotalNs, duration.Nanoseconds())
}

// IncDiscoveryCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncDiscoveryCacheHit() {
	atomic.AddUint64(&m.discoveryCacheHits, 1)
}

// IncDiscoveryCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncDiscoveryCacheMiss() {
	atomic.AddUint64(&m.discoveryCacheMisses, 1)
}

// IncHistoryEventPublished counts publish attempts.
func (m *InMemoryRecorder) IncHistoryEventPublished(status string) {
	m.inc(m.historyPublished, status)
}

// IncHistoryEventProcessed counts worker outcomes.
func (m *InMemoryRecorder) IncHistoryEventProcessed(status string) {
	m.inc(m.historyProcessed, status)
}

// ObserveHistoryBatchSize is not tracked in memory.
func (m *InMemoryRecorder) ObserveHistoryBatchSize(size int) {}

// ObserveHistoryBatchDuration is not tracked in memory.
func (m *InMemoryRecorder) ObserveHistoryBatchDuration(duration time.Duration) {}

// SetHistoryQueueDepth stores the latest pending+lag count.
func (m *InMemoryRecorder) SetHistoryQueueDepth(depth int64) {
	atomic.StoreInt64(&m.historyQueueDepth, depth)
}

// ObserveHistoryIngestLag stores the latest ingest lag.
func (m *InMemoryRecorder) ObserveHistoryIngestLag(lag time.Duration) {
	atomic.StoreInt64(&m.historyIngestLagNs, lag.Nanoseconds())
}
