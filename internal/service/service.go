// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/enhancemyseo/enhancemyseo/internal/history"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// Service errors.
var (
	ErrEmailRequired      = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidTier        = errors.New("invalid tier")
	ErrInvalidMonth       = errors.New("month must be formatted YYYY-MM")
	ErrAdminOnly          = errors.New("admin role required")

	ErrNameRequired      = errors.New("name is required")
	ErrInvalidWebsiteURL = errors.New("website_url must be an http or https URL")
	ErrBrandNotFound     = errors.New("brand profile not found")
	ErrBrandRequired     = errors.New("Please configure your brand profile first")

	ErrLimitReached = errors.New("limit reached")

	ErrTopicRequired      = errors.New("topic is required")
	ErrKeywordRequired    = errors.New("keyword is required")
	ErrArticleNotFound    = errors.New("article not found")
	ErrNoPublishTarget    = errors.New("brand profile has no shop domain or website to publish to")
	ErrTitleRequired      = errors.New("title is required")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidBulkSize    = errors.New("items must contain between 1 and 25 products")
	ErrInvalidPageType    = errors.New("unknown page type")
	ErrHistoryNotFound    = errors.New("history item not found")
	ErrInvalidHistoryKind = errors.New("unknown history kind")
	ErrInvalidCursor      = errors.New("invalid pagination cursor")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// HistoryPublisher records generation activity without blocking the caller.
type HistoryPublisher interface {
	PublishAsync(event history.EventPayload)
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(history.EventPayload) {}

// Completer is the LLM surface generation services depend on.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// BrandLookup loads a brand profile owned by a user.
type BrandLookup interface {
	GetBrandProfile(ctx context.Context, userID, id string) (*model.BrandProfile, error)
}

// clampPageSize applies default and maximum list sizes.
func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// cleanList trims entries and drops empty ones.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
