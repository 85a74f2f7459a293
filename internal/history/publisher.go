// Package history records generation activity through a Redis stream.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

const (
	// StreamKey is the Redis stream for history events.
	StreamKey = "stream:history_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:history_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 250 * time.Millisecond

	maxSummaryLength = 300
)

// EventPayload is the compact event format stored in the stream.
type EventPayload struct {
	UserID    string `json:"uid"`
	Kind      string `json:"k"`
	RefID     string `json:"ref,omitempty"`
	Summary   string `json:"s"`
	CreatedAt int64  `json:"t"` // Unix milliseconds
}

// NewEvent builds a payload stamped with the current time.
func NewEvent(userID string, kind model.HistoryKind, refID, summary string) EventPayload {
	return EventPayload{
		UserID:    userID,
		Kind:      string(kind),
		RefID:     refID,
		Summary:   TruncateSummary(summary),
		CreatedAt: time.Now().UnixMilli(),
	}
}

// TruncateSummary caps summary length on a rune boundary.
func TruncateSummary(s string) string {
	r := []rune(s)
	if len(r) > maxSummaryLength {
		return string(r[:maxSummaryLength])
	}
	return s
}

// Publisher enqueues history events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new history event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "history.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event EventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned.
func (p *Publisher) PublishAsync(event EventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish history event",
				"user_id", event.UserID,
				"kind", event.Kind,
				"error", err,
			)
			p.metrics.IncHistoryEventPublished("dropped")
			return
		}

		p.logger.Debug("history event published",
			"kind", event.Kind,
			"stream_id", streamID,
		)
		p.metrics.IncHistoryEventPublished("success")
	}()
}
