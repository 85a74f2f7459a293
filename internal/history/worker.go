package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/retry"
)

const (
	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "history_workers"

	// DefaultBatchSize is the max events per batch.
	DefaultBatchSize = 200

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultClaimInterval is how often to scan pending messages.
	DefaultClaimInterval = 10 * time.Second

	// DefaultClaimIdle is the idle time before reclaiming pending messages.
	DefaultClaimIdle = 30 * time.Second

	// DefaultMetricsInterval is how often to refresh queue depth metrics.
	DefaultMetricsInterval = 5 * time.Second

	deadLetterMaxLen = 10000
)

var batchRetryPolicy = retry.Policy{
	Attempts:  3,
	BaseDelay: time.Second,
	MaxDelay:  8 * time.Second,
}

// Repository persists history items.
type Repository interface {
	BulkInsert(ctx context.Context, items []*model.HistoryItem) error
}

// Worker moves history events from the Redis stream into PostgreSQL.
type Worker struct {
	redis           *redis.Client
	repo            Repository
	logger          *slog.Logger
	metrics         metrics.Recorder
	consumerID      string
	batchSize       int
	blockTimeout    time.Duration
	retryPolicy     retry.Policy
	claimInterval   time.Duration
	claimIdle       time.Duration
	metricsInterval time.Duration
	claimStartID    string
	lastClaim       time.Time
	lastMetrics     time.Time

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewWorker creates a new history worker.
func NewWorker(client *redis.Client, repo Repository, logger *slog.Logger, consumerID string, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:           client,
		repo:            repo,
		logger:          logger.With("component", "history.worker", "consumer_id", consumerID),
		metrics:         recorder,
		consumerID:      consumerID,
		batchSize:       DefaultBatchSize,
		blockTimeout:    DefaultBlockTimeout,
		retryPolicy:     batchRetryPolicy,
		claimInterval:   DefaultClaimInterval,
		claimIdle:       DefaultClaimIdle,
		metricsInterval: DefaultMetricsInterval,
		claimStartID:    "0-0",
	}
}

// Run starts the worker loop. Blocks until context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("history worker started")

	for {
		w.mu.Lock()
		draining := w.draining
		w.mu.Unlock()

		if draining {
			w.logger.Info("history worker draining, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			w.logger.Info("history worker stopping")
			return ctx.Err()
		default:
			if err := w.processOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("process error", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Shutdown stops the worker, completing any in-flight batch.
// It has the server.ShutdownFunc signature.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	w.logger.Info("history worker shutdown initiated")

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
			w.logger.Info("history worker shutdown complete")
			return nil
		case <-ctx.Done():
			w.logger.Warn("history worker shutdown timed out")
			return ctx.Err()
		}
	}
	return nil
}

// SetBatchSize overrides the default batch size.
func (w *Worker) SetBatchSize(size int) {
	if size > 0 {
		w.batchSize = size
	}
}

// SetBlockTimeout overrides the default blocking timeout.
func (w *Worker) SetBlockTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.blockTimeout = timeout
	}
}

// SetClaimIdle overrides the default pending idle threshold.
func (w *Worker) SetClaimIdle(idle time.Duration) {
	if idle > 0 {
		w.claimIdle = idle
	}
}

// SetRetryPolicy overrides batch insert retries.
func (w *Worker) SetRetryPolicy(policy retry.Policy) {
	w.retryPolicy = policy
}

func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !isConsumerGroupExistsError(err) {
		return err
	}
	return nil
}

// processOnce reads and processes a single batch.
func (w *Worker) processOnce(ctx context.Context) error {
	w.maybeUpdateQueueDepth(ctx)

	claimed, err := w.maybeClaimPending(ctx)
	if err != nil {
		w.logger.Warn("failed to claim pending messages", "error", err)
	}

	messages := claimed
	if len(messages) == 0 {
		messages, err = w.readBatch(ctx)
		if err != nil {
			return err
		}
	}

	if len(messages) == 0 {
		return nil
	}

	items, messageIDs := w.parseMessages(ctx, messages)
	if len(items) == 0 {
		return w.ackMessages(ctx, messageIDs)
	}

	if err := w.processBatchWithRetry(ctx, items); err != nil {
		w.logger.Error("batch processing failed after retries",
			"batch_size", len(items),
			"error", err,
		)
		// Left pending for XAUTOCLAIM.
		return err
	}

	return w.ackMessages(ctx, messageIDs)
}

// maybeClaimPending reclaims messages another consumer left idle.
func (w *Worker) maybeClaimPending(ctx context.Context) ([]redis.XMessage, error) {
	if w.claimInterval <= 0 || w.claimIdle <= 0 {
		return nil, nil
	}
	if !w.lastClaim.IsZero() && time.Since(w.lastClaim) < w.claimInterval {
		return nil, nil
	}

	w.lastClaim = time.Now()
	messages, start, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.claimIdle,
		Start:    w.claimStartID,
		Count:    int64(w.batchSize),
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if start != "" {
		w.claimStartID = start
	}
	return messages, nil
}

func (w *Worker) maybeUpdateQueueDepth(ctx context.Context) {
	if w.metricsInterval <= 0 {
		return
	}
	if !w.lastMetrics.IsZero() && time.Since(w.lastMetrics) < w.metricsInterval {
		return
	}
	w.lastMetrics = time.Now()

	groups, err := w.redis.XInfoGroups(ctx, StreamKey).Result()
	if err != nil && err != redis.Nil {
		w.logger.Warn("failed to read stream group info", "error", err)
		return
	}
	for _, group := range groups {
		if group.Name == ConsumerGroup {
			w.metrics.SetHistoryQueueDepth(group.Pending + group.Lag)
			return
		}
	}
}

func (w *Worker) readBatch(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.batchSize),
		Block:    w.blockTimeout,
	}).Result()

	if err == redis.Nil || len(streams) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	return streams[0].Messages, nil
}

// parseMessages converts stream messages to history items.
// Malformed or invalid messages are moved to the dead-letter stream.
func (w *Worker) parseMessages(ctx context.Context, messages []redis.XMessage) ([]*model.HistoryItem, []string) {
	items := make([]*model.HistoryItem, 0, len(messages))
	messageIDs := make([]string, 0, len(messages))

	for _, msg := range messages {
		messageIDs = append(messageIDs, msg.ID)

		item, reason, err := decodeMessage(msg)
		if err != nil {
			w.deadLetterMessage(ctx, msg, reason, err.Error())
			continue
		}
		items = append(items, item)
	}

	return items, messageIDs
}

// decodeMessage turns a stream message into a history item. The stream
// ID becomes the idempotency key.
func decodeMessage(msg redis.XMessage) (*model.HistoryItem, string, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return nil, "invalid_format", errors.New("payload field missing or not a string")
	}

	var payload EventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, "unmarshal_error", err
	}
	if err := ValidateEventPayload(payload); err != nil {
		return nil, "validation_error", err
	}

	return &model.HistoryItem{
		ID:        ulid.Make().String(),
		EventID:   msg.ID,
		UserID:    payload.UserID,
		Kind:      model.HistoryKind(payload.Kind),
		RefID:     payload.RefID,
		Summary:   payload.Summary,
		CreatedAt: time.UnixMilli(payload.CreatedAt).UTC(),
	}, "", nil
}

func (w *Worker) deadLetterMessage(ctx context.Context, msg redis.XMessage, reason, detail string) {
	w.logger.Warn("dead-lettering poison message",
		"message_id", msg.ID,
		"reason", reason,
		"detail", detail,
	)

	_, err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		MaxLen: deadLetterMaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"original_id":      msg.ID,
			"original_stream":  StreamKey,
			"reason":           reason,
			"detail":           detail,
			"payload":          msg.Values["payload"],
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		w.logger.Error("failed to write to dead-letter queue",
			"message_id", msg.ID,
			"error", err,
		)
	}

	w.metrics.IncHistoryEventProcessed("dead_lettered")
}

func (w *Worker) processBatchWithRetry(ctx context.Context, items []*model.HistoryItem) error {
	attempt := 0
	err := retry.Do(ctx, w.retryPolicy, func(ctx context.Context) error {
		attempt++
		err := w.processBatch(ctx, items)
		if err != nil {
			w.logger.Warn("batch processing failed",
				"attempt", attempt,
				"error", err,
			)
		}
		return err
	})
	if err != nil {
		for range items {
			w.metrics.IncHistoryEventProcessed("failed")
		}
	}
	return err
}

func (w *Worker) processBatch(ctx context.Context, items []*model.HistoryItem) error {
	start := time.Now()

	if err := w.repo.BulkInsert(ctx, items); err != nil {
		return fmt.Errorf("bulk insert: %w", err)
	}

	w.logger.Info("batch processed",
		"events_count", len(items),
		"duration_ms", float64(time.Since(start).Microseconds())/1000,
	)

	w.metrics.ObserveHistoryBatchSize(len(items))
	w.metrics.ObserveHistoryBatchDuration(time.Since(start))
	for _, item := range items {
		w.metrics.IncHistoryEventProcessed("success")
		w.metrics.ObserveHistoryIngestLag(time.Since(item.CreatedAt))
	}

	return nil
}

func (w *Worker) ackMessages(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	if _, err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, messageIDs...).Result(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

func isConsumerGroupExistsError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
