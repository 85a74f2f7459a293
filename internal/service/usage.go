package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

// UsageStore persists monthly usage counters.
type UsageStore interface {
	GetUsage(ctx context.Context, userID, month string) (*model.Usage, error)
	IncrementUsage(ctx context.Context, userID, month string, kind model.UsageKind, limit int) (int, error)
	ResetUsage(ctx context.Context, userID, month string) (int64, error)
}

// UsageSummary is a user's counters and quotas for the current month.
type UsageSummary struct {
	Month  string         `json:"month"`
	Tier   string         `json:"tier"`
	Usage  *model.Usage   `json:"usage"`
	Limits map[string]int `json:"limits"`
}

// UsageService enforces per-tier monthly quotas.
type UsageService struct {
	store  UsageStore
	logger *slog.Logger
	now    func() time.Time
}

// NewUsageService creates a new UsageService.
func NewUsageService(store UsageStore, logger *slog.Logger) *UsageService {
	return &UsageService{
		store:  store,
		logger: logger.With("component", "usage"),
		now:    nowUTC,
	}
}

func (s *UsageService) month() string {
	return model.UsageMonth(s.now())
}

// Check returns ErrLimitReached when the user's counter for kind is at the
// tier quota for the current month.
func (s *UsageService) Check(ctx context.Context, userID, tier string, kind model.UsageKind) error {
	limit := model.GetTierConfig(tier).Limit(kind)
	if limit == 0 {
		return nil
	}

	usage, err := s.store.GetUsage(ctx, userID, s.month())
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}
	if usage.Count(kind) >= limit {
		return ErrLimitReached
	}
	return nil
}

// Increment atomically bumps the counter for kind, refusing to pass the
// tier quota. Returns the new value.
func (s *UsageService) Increment(ctx context.Context, userID, tier string, kind model.UsageKind) (int, error) {
	limit := model.GetTierConfig(tier).Limit(kind)

	count, err := s.store.IncrementUsage(ctx, userID, s.month(), kind, limit)
	if err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			return 0, ErrLimitReached
		}
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return count, nil
}

// Record increments after a successful generation. Failures are logged
// and never surface to the caller.
func (s *UsageService) Record(ctx context.Context, userID, tier string, kind model.UsageKind) {
	if _, err := s.Increment(ctx, userID, tier, kind); err != nil {
		s.logger.Warn("usage increment failed",
			"user_id", userID,
			"kind", kind,
			"error", err,
		)
	}
}

// Summary returns counts and limits for the current month.
func (s *UsageService) Summary(ctx context.Context, userID, tier string) (*UsageSummary, error) {
	month := s.month()
	usage, err := s.store.GetUsage(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("load usage: %w", err)
	}

	cfg := model.GetTierConfig(tier)
	return &UsageSummary{
		Month: month,
		Tier:  tier,
		Usage: usage,
		Limits: map[string]int{
			string(model.UsageArticles): cfg.Articles,
			string(model.UsageKeywords): cfg.Keywords,
			string(model.UsageProducts): cfg.Products,
		},
	}, nil
}

// Reset deletes usage rows for month (current month when empty), for one
// user or every user when userID is empty.
func (s *UsageService) Reset(ctx context.Context, userID, month string) (string, int64, error) {
	if month == "" {
		month = s.month()
	} else if _, err := time.Parse("2006-01", month); err != nil {
		return "", 0, ErrInvalidMonth
	}

	removed, err := s.store.ResetUsage(ctx, userID, month)
	if err != nil {
		return "", 0, fmt.Errorf("reset usage: %w", err)
	}

	s.logger.Info("usage reset",
		"user_id", userID,
		"month", month,
		"rows", removed,
	)
	return month, removed, nil
}
