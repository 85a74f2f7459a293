package discovery

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxPageBytes    = 2 << 20
	maxSitemapBytes = 8 << 20
)

// fetchResult is a completed GET.
type fetchResult struct {
	Status      int
	FinalURL    *url.URL
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *fetchResult) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsHTML reports whether the response looks like an HTML document.
func (r *fetchResult) IsHTML() bool {
	ct := strings.ToLower(r.ContentType)
	return ct == "" || strings.Contains(ct, "html")
}

// fetcher issues polite GETs: fixed user agent, per-request timeout and a
// per-host token bucket.
type fetcher struct {
	client    *http.Client
	userAgent string
	rps       float64
	burst     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newFetcher(client *http.Client, userAgent string, rps float64, burst int) *fetcher {
	if burst < 1 {
		burst = 1
	}
	return &fetcher{
		client:    client,
		userAgent: userAgent,
		rps:       rps,
		burst:     burst,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (f *fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		limit := rate.Inf
		if f.rps > 0 {
			limit = rate.Limit(f.rps)
		}
		l = rate.NewLimiter(limit, f.burst)
		f.limiters[host] = l
	}
	return l
}

// get fetches target within timeout, reading at most maxBytes of body.
func (f *fetcher) get(ctx context.Context, target string, timeout time.Duration, maxBytes int64) (*fetchResult, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := f.limiter(strings.ToLower(u.Host)).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &fetchResult{
		Status:      resp.StatusCode,
		FinalURL:    resp.Request.URL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// maybeGunzip decompresses gzip payloads (sitemap.xml.gz) and passes
// everything else through.
func maybeGunzip(body []byte, limit int64) ([]byte, error) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit))
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	return out, nil
}
