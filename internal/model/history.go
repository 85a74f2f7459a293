package model

import "time"

// HistoryKind identifies what produced a history item.
type HistoryKind string

const (
	HistoryArticle   HistoryKind = "article"
	HistoryKeywords  HistoryKind = "keywords"
	HistoryProduct   HistoryKind = "product"
	HistoryDiscovery HistoryKind = "discovery"
)

// IsValid checks if the history kind is known.
func (k HistoryKind) IsValid() bool {
	switch k {
	case HistoryArticle, HistoryKeywords, HistoryProduct, HistoryDiscovery:
		return true
	}
	return false
}

// HistoryItem records a generation action in a user's activity feed.
type HistoryItem struct {
	ID        string      `json:"id"`       // ULID (time-sortable)
	EventID   string      `json:"-"`        // Idempotency key (Redis stream ID)
	UserID    string      `json:"user_id"`
	Kind      HistoryKind `json:"kind"`
	RefID     string      `json:"ref_id,omitempty"`
	Summary   string      `json:"summary"`
	CreatedAt time.Time   `json:"created_at"`
}
