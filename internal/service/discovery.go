package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enhancemyseo/enhancemyseo/internal/cache"
	"github.com/enhancemyseo/enhancemyseo/internal/discovery"
	"github.com/enhancemyseo/enhancemyseo/internal/history"
	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// Crawler builds the page index of a site.
type Crawler interface {
	Crawl(ctx context.Context, site string) (*model.SiteIndex, error)
}

// SiteIndexCache stores crawled site indexes.
type SiteIndexCache interface {
	GetSiteIndex(ctx context.Context, site string) (*model.SiteIndex, error)
	SetSiteIndex(ctx context.Context, index *model.SiteIndex, ttl time.Duration) error
}

// DiscoveryService finds and ranks a site's pages, caching crawls.
type DiscoveryService struct {
	crawler      Crawler
	cache        SiteIndexCache
	ttl          time.Duration
	allowPrivate bool
	publisher    HistoryPublisher
	metrics      metrics.Recorder
	logger       *slog.Logger
}

// NewDiscoveryService creates a new DiscoveryService. cache may be nil.
func NewDiscoveryService(crawler Crawler, siteCache SiteIndexCache, ttl time.Duration, allowPrivate bool, publisher HistoryPublisher, recorder metrics.Recorder, logger *slog.Logger) *DiscoveryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if ttl <= 0 {
		ttl = cache.DefaultDiscoveryTTL
	}
	return &DiscoveryService{
		crawler:      crawler,
		cache:        siteCache,
		ttl:          ttl,
		allowPrivate: allowPrivate,
		publisher:    publisher,
		metrics:      recorder,
		logger:       logger.With("component", "discovery"),
	}
}

// Search discovers req.URL, serving the crawl from cache when possible.
func (s *DiscoveryService) Search(ctx context.Context, req discovery.Request) (*discovery.Result, error) {
	start := time.Now()

	site, err := discovery.ParseSiteURL(req.URL, s.allowPrivate)
	if err != nil {
		return nil, err
	}
	for _, t := range req.Types {
		if !t.IsValid() {
			return nil, ErrInvalidPageType
		}
	}

	index, cached := s.cachedIndex(ctx, site.String())
	if index == nil {
		index, err = s.crawler.Crawl(ctx, site.String())
		if err != nil {
			s.metrics.IncDiscoveryRun("failed")
			return nil, fmt.Errorf("crawl site: %w", err)
		}
		s.storeIndex(ctx, index)
	}

	status := "live"
	if cached {
		status = "cached"
	}
	s.metrics.IncDiscoveryRun(status)
	s.metrics.ObserveDiscoveryDuration(time.Since(start))

	phases := append(append([]string(nil), index.Phases...), discovery.PhaseRank)
	return &discovery.Result{
		Site:      index.Site,
		Pages:     discovery.Rank(index.Pages, req.Query, req.Types, req.Limit),
		Phases:    phases,
		ElapsedMS: time.Since(start).Milliseconds(),
		Cached:    cached,
	}, nil
}

// SearchForUser runs Search and records it in the user's history.
func (s *DiscoveryService) SearchForUser(ctx context.Context, userID string, req discovery.Request) (*discovery.Result, error) {
	res, err := s.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publisher.PublishAsync(history.NewEvent(userID, model.HistoryDiscovery, "",
		fmt.Sprintf("%d pages found on %s", len(res.Pages), res.Site)))
	return res, nil
}

func (s *DiscoveryService) cachedIndex(ctx context.Context, site string) (*model.SiteIndex, bool) {
	if s.cache == nil {
		return nil, false
	}

	index, err := s.cache.GetSiteIndex(ctx, site)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("discovery cache read failed", "site", site, "error", err)
		}
		s.metrics.IncDiscoveryCacheMiss()
		return nil, false
	}
	s.metrics.IncDiscoveryCacheHit()
	return index, true
}

func (s *DiscoveryService) storeIndex(ctx context.Context, index *model.SiteIndex) {
	if s.cache == nil {
		return
	}
	// An empty crawl usually means the site or its robots.txt was down.
	if len(index.Pages) == 0 {
		s.logger.Info("discovery found no pages, not caching", "site", index.Site)
		return
	}
	if err := s.cache.SetSiteIndex(ctx, index, s.ttl); err != nil {
		s.logger.Warn("discovery cache write failed", "site", index.Site, "error", err)
	}
}
