package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// ErrHistoryNotFound is returned when a history item does not exist for the owner.
var ErrHistoryNotFound = errors.New("history item not found")

// HistoryRepository provides database access for history items.
type HistoryRepository struct {
	repo *Repository
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(repo *Repository) *HistoryRepository {
	return &HistoryRepository{repo: repo}
}

// BulkInsert inserts history items with idempotency via ON CONFLICT DO NOTHING.
func (r *HistoryRepository) BulkInsert(ctx context.Context, items []*model.HistoryItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO history_items (id, event_id, user_id, kind, ref_id, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.EventID,
			item.UserID,
			item.Kind,
			item.RefID,
			item.Summary,
			item.CreatedAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert history item %d: %w", i, err)
		}
	}

	return nil
}

// List returns a user's most recent history items, optionally filtered by kind.
func (r *HistoryRepository) List(ctx context.Context, userID string, kind model.HistoryKind, limit int) ([]*model.HistoryItem, error) {
	query := `
		SELECT id, event_id, user_id, kind, ref_id, summary, created_at
		FROM history_items
		WHERE user_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.repo.pool.Query(ctx, query, userID, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	items := make([]*model.HistoryItem, 0, limit)
	for rows.Next() {
		var item model.HistoryItem
		if err := rows.Scan(
			&item.ID,
			&item.EventID,
			&item.UserID,
			&item.Kind,
			&item.RefID,
			&item.Summary,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return items, nil
}

// Delete removes a single history item owned by userID.
func (r *HistoryRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.repo.pool.Exec(ctx, `DELETE FROM history_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete history item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

// Clear removes all of a user's history. Returns the number of items removed.
func (r *HistoryRepository) Clear(ctx context.Context, userID string) (int64, error) {
	result, err := r.repo.pool.Exec(ctx, `DELETE FROM history_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected(), nil
}
