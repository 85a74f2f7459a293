package discovery

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// sitemapDoc decodes both <urlset> and <sitemapindex> documents.
type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// parseSitemap returns page locations and nested sitemap locations.
func parseSitemap(body []byte) (pages, nested []string, err error) {
	var doc sitemapDoc
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode sitemap: %w", err)
	}

	switch doc.XMLName.Local {
	case "urlset", "sitemapindex":
	default:
		return nil, nil, fmt.Errorf("unexpected sitemap root %q", doc.XMLName.Local)
	}

	for _, u := range doc.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			pages = append(pages, loc)
		}
	}
	for _, s := range doc.Sitemaps {
		if loc := strings.TrimSpace(s.Loc); loc != "" {
			nested = append(nested, loc)
		}
	}
	return pages, nested, nil
}

// collectSitemapURLs walks robots-declared and conventional sitemaps,
// following indexes breadth-first. At most MaxSitemapDocs documents are
// fetched and MaxSitemapURLs same-site page URLs returned.
func (r *run) collectSitemapURLs(ctx context.Context, robots *robotsRules) []string {
	queue := make([]string, 0, 8)
	queue = append(queue, robots.Sitemaps()...)
	queue = append(queue,
		r.site.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String(),
		r.site.ResolveReference(&url.URL{Path: "/sitemap_index.xml"}).String(),
	)

	seenDocs := make(map[string]bool)
	seenPages := make(map[string]bool)
	var pages []string
	fetched := 0

	for len(queue) > 0 && fetched < r.cfg.MaxSitemapDocs && len(pages) < r.cfg.MaxSitemapURLs {
		if r.expired() {
			break
		}

		next := queue[0]
		queue = queue[1:]

		u, err := url.Parse(next)
		if err != nil || !sameSite(u.Hostname(), r.site.Hostname()) {
			continue
		}
		key := normalizeURL(u)
		if seenDocs[key] {
			continue
		}
		seenDocs[key] = true

		fetched++
		res, err := r.fetcher.get(ctx, next, r.cfg.RobotsTimeout, maxSitemapBytes)
		if err != nil || !res.OK() {
			continue
		}

		body, err := maybeGunzip(res.Body, maxSitemapBytes)
		if err != nil {
			continue
		}

		locs, nested, err := parseSitemap(body)
		if err != nil {
			r.logger.Debug("sitemap skipped", "url", next, "error", err)
			continue
		}
		queue = append(queue, nested...)

		for _, loc := range locs {
			if len(pages) >= r.cfg.MaxSitemapURLs {
				break
			}
			pu, err := url.Parse(loc)
			if err != nil || !sameSite(pu.Hostname(), r.site.Hostname()) {
				continue
			}
			id := pageKey(pu)
			if seenPages[id] {
				continue
			}
			seenPages[id] = true
			pages = append(pages, normalizeURL(pu))
		}
	}

	return pages
}
