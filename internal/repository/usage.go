package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

var (
	// ErrLimitReached is returned when an increment would exceed the quota.
	ErrLimitReached = errors.New("limit reached")
	// ErrInvalidUsageKind is returned for an unknown counter.
	ErrInvalidUsageKind = errors.New("invalid usage kind")
)

// GetUsage returns the counters for a user and month.
// A month with no recorded usage yields zero counters.
func (r *Repository) GetUsage(ctx context.Context, userID, month string) (*model.Usage, error) {
	query := `
		SELECT user_id, month, articles, keywords, products, updated_at
		FROM usage
		WHERE user_id = $1 AND month = $2
	`

	var u model.Usage
	err := r.pool.QueryRow(ctx, query, userID, month).Scan(
		&u.UserID,
		&u.Month,
		&u.Articles,
		&u.Keywords,
		&u.Products,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Usage{UserID: userID, Month: month}, nil
		}
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return &u, nil
}

// IncrementUsage atomically adds one to a counter unless it has reached limit.
// A limit of zero means unlimited. Returns the new counter value.
func (r *Repository) IncrementUsage(ctx context.Context, userID, month string, kind model.UsageKind, limit int) (int, error) {
	if !kind.IsValid() {
		return 0, ErrInvalidUsageKind
	}
	col := kind.Column()

	query := fmt.Sprintf(`
		INSERT INTO usage (user_id, month, %[1]s, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (user_id, month) DO UPDATE
		SET %[1]s = usage.%[1]s + 1, updated_at = NOW()
		WHERE $3 = 0 OR usage.%[1]s < $3
		RETURNING %[1]s
	`, col)

	var count int
	err := r.pool.QueryRow(ctx, query, userID, month, limit).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLimitReached
		}
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return count, nil
}

// ResetUsage deletes usage rows for a month, for one user or all users when
// userID is empty. Returns the number of rows removed.
func (r *Repository) ResetUsage(ctx context.Context, userID, month string) (int64, error) {
	query := `DELETE FROM usage WHERE month = $1 AND ($2 = '' OR user_id = $2)`

	result, err := r.pool.Exec(ctx, query, month, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset usage: %w", err)
	}
	return result.RowsAffected(), nil
}
