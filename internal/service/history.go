package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

// HistoryStore reads and prunes a user's activity feed.
type HistoryStore interface {
	List(ctx context.Context, userID string, kind model.HistoryKind, limit int) ([]*model.HistoryItem, error)
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

// HistoryService exposes the activity feed.
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns recent items, optionally of one kind.
func (s *HistoryService) List(ctx context.Context, userID, kind string, limit int) ([]*model.HistoryItem, error) {
	k := model.HistoryKind(kind)
	if kind != "" && !k.IsValid() {
		return nil, ErrInvalidHistoryKind
	}

	items, err := s.store.List(ctx, userID, k, clampPageSize(limit))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

// Delete removes one item.
func (s *HistoryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrHistoryNotFound) {
			return ErrHistoryNotFound
		}
		return fmt.Errorf("delete history item: %w", err)
	}
	return nil
}

// Clear removes all of a user's items.
func (s *HistoryService) Clear(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return n, nil
}
