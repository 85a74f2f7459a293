package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

// generator holds what every LLM-backed service shares.
type generator struct {
	llm       Completer
	brands    BrandLookup
	usage     *UsageService
	publisher HistoryPublisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

func newGenerator(llm Completer, brands BrandLookup, usage *UsageService, publisher HistoryPublisher, recorder metrics.Recorder, logger *slog.Logger) generator {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return generator{
		llm:       llm,
		brands:    brands,
		usage:     usage,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
	}
}

// checkQuota refuses the request when the monthly quota is used up.
func (g *generator) checkQuota(ctx context.Context, ac *model.AuthContext, kind model.UsageKind) error {
	if err := g.usage.Check(ctx, ac.UserID, ac.Tier, kind); err != nil {
		if errors.Is(err, ErrLimitReached) {
			g.metrics.IncGeneration(string(kind), "limited")
		}
		return err
	}
	return nil
}

// brand loads an optional brand profile; an empty id yields nil.
func (g *generator) brand(ctx context.Context, userID, id string) (*model.BrandProfile, error) {
	if id == "" {
		return nil, nil
	}
	b, err := g.brands.GetBrandProfile(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrBrandNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("load brand profile: %w", err)
	}
	return b, nil
}

// finish records a generation outcome.
func (g *generator) finish(kind model.UsageKind, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	g.metrics.IncGeneration(string(kind), status)
	g.metrics.ObserveGenerationDuration(string(kind), time.Since(start))
}
