package discovery

import (
	"net/url"
	"sort"
	"strings"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// normalizeURL drops the query, fragment, default port and trailing slash.
func normalizeURL(u *url.URL) string {
	host := strings.ToLower(u.Host)
	scheme := strings.ToLower(u.Scheme)
	if (scheme == "http" && strings.HasSuffix(host, ":80")) || (scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = host[:strings.LastIndex(host, ":")]
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	return scheme + "://" + host + path
}

// pageKey identifies a page regardless of scheme and a leading "www.", the
// same equivalence sameSite applies to hosts.
func pageKey(u *url.URL) string {
	normalized := normalizeURL(u)
	rest := normalized[strings.Index(normalized, "://")+3:]
	return strings.TrimPrefix(rest, "www.")
}

// clampLimit applies the default and maximum result counts.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Rank deduplicates pages, keeps only the requested types (all when
// empty), adds query relevance and returns at most limit pages sorted by
// score then URL.
func Rank(pages []model.Page, query string, types []model.PageType, limit int) []model.Page {
	byURL := make(map[string]model.Page, len(pages))
	for _, p := range pages {
		key := p.URL
		if u, err := url.Parse(strings.TrimSpace(p.URL)); err == nil {
			p.URL = normalizeURL(u)
			key = pageKey(u)
		}
		existing, ok := byURL[key]
		if !ok || p.Score > existing.Score || (p.Score == existing.Score && p.Fetched && !existing.Fetched) {
			byURL[key] = p
		}
	}

	allowed := make(map[model.PageType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}

	tokens := queryTokens(query)
	out := make([]model.Page, 0, len(byURL))
	for _, p := range byURL {
		if len(allowed) > 0 && !allowed[p.Type] {
			continue
		}
		p.Score += relevance(p, tokens)
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].URL < out[j].URL
	})

	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out
}

func queryTokens(query string) []string {
	var tokens []string
	seen := make(map[string]bool)
	for _, t := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	}) {
		if len(t) < 2 || seen[t] {
			continue
		}
		seen[t] = true
		tokens = append(tokens, t)
	}
	return tokens
}

func relevance(p model.Page, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}

	title := strings.ToLower(p.Title)
	desc := strings.ToLower(p.Description)
	path := ""
	if u, err := url.Parse(p.URL); err == nil {
		path = strings.ToLower(u.Path)
	}

	score := 0
	for _, t := range tokens {
		if strings.Contains(title, t) {
			score += 4
		}
		if strings.Contains(path, t) {
			score += 2
		}
		if strings.Contains(desc, t) {
			score += 1
		}
	}
	return score
}
