// Package discovery crawls a public site within a time budget and ranks its
// pages by type and relevance. It honours robots.txt, reads sitemaps, falls
// back to homepage links and common paths, and refuses private addresses.
package discovery

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// Phase names reported in results.
const (
	PhaseRobots   = "robots"
	PhaseSitemap  = "sitemap"
	PhaseHomepage = "homepage"
	PhaseProbe    = "probe"
	PhaseFetch    = "fetch"
	PhaseRank     = "rank"
)

// probePaths are tried when sitemap and homepage yield too few candidates.
var probePaths = []string{
	"/blog", "/blogs/news", "/news", "/articles",
	"/products", "/collections", "/collections/all", "/shop",
	"/services", "/about", "/about-us", "/pages/about", "/pages/about-us",
}

// Config bounds a discovery run.
type Config struct {
	Budget           time.Duration
	RobotsTimeout    time.Duration
	PageTimeout      time.Duration
	Concurrency      int
	MaxFetch         int
	MaxSitemapDocs   int
	MaxSitemapURLs   int
	MaxHomepageLinks int
	ProbeThreshold   int
	HostRPS          float64
	UserAgent        string
	AllowPrivate     bool
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Budget:           8 * time.Second,
		RobotsTimeout:    3 * time.Second,
		PageTimeout:      2 * time.Second,
		Concurrency:      5,
		MaxFetch:         30,
		MaxSitemapDocs:   5,
		MaxSitemapURLs:   200,
		MaxHomepageLinks: 60,
		ProbeThreshold:   10,
		HostRPS:          10,
		UserAgent:        "EnhanceMySEOBot/1.0 (+https://enhancemyseo.com/bot)",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Budget <= 0 {
		c.Budget = d.Budget
	}
	if c.RobotsTimeout <= 0 {
		c.RobotsTimeout = d.RobotsTimeout
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = d.PageTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.MaxFetch <= 0 {
		c.MaxFetch = d.MaxFetch
	}
	if c.MaxSitemapDocs <= 0 {
		c.MaxSitemapDocs = d.MaxSitemapDocs
	}
	if c.MaxSitemapURLs <= 0 {
		c.MaxSitemapURLs = d.MaxSitemapURLs
	}
	if c.MaxHomepageLinks <= 0 {
		c.MaxHomepageLinks = d.MaxHomepageLinks
	}
	if c.ProbeThreshold <= 0 {
		c.ProbeThreshold = d.ProbeThreshold
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}

// Request is a discovery query against one site.
type Request struct {
	URL   string
	Query string
	Limit int
	Types []model.PageType
}

// Result is a ranked discovery answer.
type Result struct {
	Site      string       `json:"site"`
	Pages     []model.Page `json:"pages"`
	Phases    []string     `json:"phases"`
	ElapsedMS int64        `json:"elapsed_ms"`
	Cached    bool         `json:"cached"`
}

// Discoverer finds and classifies the pages of public websites.
type Discoverer struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Discoverer.
func New(cfg Config, logger *slog.Logger) *Discoverer {
	cfg = cfg.withDefaults()
	return &Discoverer{
		cfg:    cfg,
		client: NewHTTPClient(cfg.AllowPrivate),
		logger: logger.With("component", "discovery"),
	}
}

// Config returns the effective configuration.
func (d *Discoverer) Config() Config {
	return d.cfg
}

// Discover crawls req.URL and ranks the result.
func (d *Discoverer) Discover(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	index, err := d.Crawl(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	return &Result{
		Site:      index.Site,
		Pages:     Rank(index.Pages, req.Query, req.Types, req.Limit),
		Phases:    append(index.Phases, PhaseRank),
		ElapsedMS: time.Since(start).Milliseconds(),
	}, nil
}

// Crawl runs the sitemap, homepage, probe and fetch phases within the
// configured budget. Only an unusable site URL is an error; anything that
// fails later just yields fewer pages.
func (d *Discoverer) Crawl(ctx context.Context, rawURL string) (*model.SiteIndex, error) {
	site, err := ParseSiteURL(rawURL, d.cfg.AllowPrivate)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Budget)
	defer cancel()

	r := &run{
		cfg:      d.cfg,
		site:     site,
		fetcher:  newFetcher(d.client, d.cfg.UserAgent, d.cfg.HostRPS, d.cfg.Concurrency),
		logger:   d.logger.With("site", site.Host),
		deadline: time.Now().Add(d.cfg.Budget),
		seen:     make(map[string]int),
	}
	r.execute(ctx)

	pages := r.pages()
	r.logger.Info("site crawled",
		"pages", len(pages),
		"phases", r.phases,
	)

	return &model.SiteIndex{
		Site:      site.String(),
		Pages:     pages,
		Phases:    r.phases,
		CrawledAt: time.Now().UTC(),
	}, nil
}

// candidate is a page URL known to the crawl.
type candidate struct {
	url      *url.URL
	key      string
	source   model.PageSource
	signals  *pageSignals
	prescore int
}

// run holds the state of one crawl.
type run struct {
	cfg      Config
	site     *url.URL
	fetcher  *fetcher
	logger   *slog.Logger
	deadline time.Time

	phases     []string
	candidates []*candidate
	seen       map[string]int
}

func (r *run) expired() bool {
	return !time.Now().Before(r.deadline)
}

// enter records a phase as reached unless the budget is spent.
func (r *run) enter(phase string) bool {
	if r.expired() {
		return false
	}
	r.phases = append(r.phases, phase)
	return true
}

func (r *run) add(raw string, source model.PageSource) *candidate {
	u, err := url.Parse(raw)
	if err != nil || !sameSite(u.Hostname(), r.site.Hostname()) {
		return nil
	}
	id := pageKey(u)
	if id == pageKey(r.site) {
		return nil
	}
	if i, ok := r.seen[id]; ok {
		return r.candidates[i]
	}
	c := &candidate{url: u, key: normalizeURL(u), source: source}
	r.seen[id] = len(r.candidates)
	r.candidates = append(r.candidates, c)
	return c
}

func (r *run) execute(ctx context.Context) {
	if !r.enter(PhaseRobots) {
		return
	}
	robots := r.fetchRobots(ctx)

	if !r.enter(PhaseSitemap) {
		return
	}
	for _, loc := range r.collectSitemapURLs(ctx, robots) {
		r.add(loc, model.SourceSitemap)
	}

	if !r.enter(PhaseHomepage) {
		return
	}
	r.crawlHomepage(ctx)

	if len(r.candidates) < r.cfg.ProbeThreshold {
		if !r.enter(PhaseProbe) {
			return
		}
		r.probe(ctx)
	}

	r.applyRobots(robots)

	if !r.enter(PhaseFetch) {
		return
	}
	r.fetchPages(ctx)
}

func (r *run) crawlHomepage(ctx context.Context) {
	res, err := r.fetcher.get(ctx, r.site.String()+"/", r.cfg.PageTimeout, maxPageBytes)
	if err != nil || !res.OK() || !res.IsHTML() {
		if err != nil {
			r.logger.Debug("homepage fetch failed", "error", err)
		}
		return
	}

	signals, err := extractSignals(res.Body, res.ContentType, res.FinalURL)
	if err != nil {
		return
	}

	added := 0
	for _, link := range signals.Links {
		if added >= r.cfg.MaxHomepageLinks {
			break
		}
		before := len(r.candidates)
		if r.add(link, model.SourceHomepage) != nil && len(r.candidates) > before {
			added++
		}
	}
}

func (r *run) probe(ctx context.Context) {
	type hit struct {
		target  string
		signals *pageSignals
	}

	var (
		mu   sync.Mutex
		hits = make(map[string]hit)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(probePaths))
	for _, p := range probePaths {
		target := r.site.ResolveReference(&url.URL{Path: p}).String()
		g.Go(func() error {
			res, err := r.fetcher.get(gctx, target, r.cfg.PageTimeout, maxPageBytes)
			if err != nil || !res.OK() {
				return nil
			}
			h := hit{target: res.FinalURL.String()}
			if res.IsHTML() {
				h.signals, _ = extractSignals(res.Body, res.ContentType, res.FinalURL)
			}
			mu.Lock()
			hits[target] = h
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Deterministic insertion order.
	for _, p := range probePaths {
		target := r.site.ResolveReference(&url.URL{Path: p}).String()
		h, ok := hits[target]
		if !ok {
			continue
		}
		if c := r.add(h.target, model.SourceProbe); c != nil && c.signals == nil {
			c.signals = h.signals
		}
	}
}

func (r *run) applyRobots(robots *robotsRules) {
	if robots == nil {
		return
	}
	kept := r.candidates[:0]
	r.seen = make(map[string]int, len(r.candidates))
	for _, c := range r.candidates {
		if !robots.Allowed(c.url.EscapedPath()) {
			continue
		}
		r.seen[pageKey(c.url)] = len(kept)
		kept = append(kept, c)
	}
	r.candidates = kept
}

// fetchPages fetches the best URL-scored candidates in bounded parallel.
func (r *run) fetchPages(ctx context.Context) {
	pending := make([]*candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		_, c.prescore = classify(c.url.Path, nil)
		if c.signals == nil {
			pending = append(pending, c)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].prescore != pending[j].prescore {
			return pending[i].prescore > pending[j].prescore
		}
		return pending[i].key < pending[j].key
	})
	if len(pending) > r.cfg.MaxFetch {
		pending = pending[:r.cfg.MaxFetch]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, c := range pending {
		if r.expired() {
			break
		}
		g.Go(func() error {
			if r.expired() {
				return nil
			}
			res, err := r.fetcher.get(gctx, c.key, r.cfg.PageTimeout, maxPageBytes)
			if err != nil || !res.OK() || !res.IsHTML() {
				return nil
			}
			if s, err := extractSignals(res.Body, res.ContentType, res.FinalURL); err == nil {
				c.signals = s
			}
			return nil
		})
	}
	_ = g.Wait()
}

// pages classifies every candidate.
func (r *run) pages() []model.Page {
	out := make([]model.Page, 0, len(r.candidates))
	for _, c := range r.candidates {
		pt, score := classify(c.url.Path, c.signals)
		p := model.Page{
			URL:     c.key,
			Type:    pt,
			Score:   score,
			Source:  c.source,
			Fetched: c.signals != nil,
		}
		if c.signals != nil {
			p.Title = c.signals.Title
			p.Description = c.signals.Description
		}
		out = append(out, p)
	}
	return out
}
