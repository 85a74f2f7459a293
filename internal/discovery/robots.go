package discovery

import (
	"context"
	"net/url"

	"github.com/temoto/robotstxt"
)

// robotsRules wraps parsed robots.txt for our user agent.
// A nil value allows everything.
type robotsRules struct {
	data  *robotstxt.RobotsData
	agent string
}

// fetchRobots retrieves and parses robots.txt. Network failures and 4xx
// responses allow everything; 5xx responses disallow everything.
func (r *run) fetchRobots(ctx context.Context) *robotsRules {
	robotsURL := r.site.ResolveReference(&url.URL{Path: "/robots.txt"}).String()

	res, err := r.fetcher.get(ctx, robotsURL, r.cfg.RobotsTimeout, maxPageBytes)
	if err != nil {
		r.logger.Debug("robots.txt unavailable", "site", r.site.Host, "error", err)
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(res.Status, res.Body)
	if err != nil {
		r.logger.Debug("robots.txt unparseable", "site", r.site.Host, "error", err)
		return nil
	}

	return &robotsRules{data: data, agent: r.cfg.UserAgent}
}

// Allowed reports whether path may be crawled.
func (rr *robotsRules) Allowed(path string) bool {
	if rr == nil || rr.data == nil {
		return true
	}
	if path == "" {
		path = "/"
	}
	return rr.data.TestAgent(path, rr.agent)
}

// Sitemaps returns Sitemap: directives.
func (rr *robotsRules) Sitemaps() []string {
	if rr == nil || rr.data == nil {
		return nil
	}
	return rr.data.Sitemaps
}
