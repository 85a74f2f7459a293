package discovery

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// maxTextChars bounds the body text kept for classification, in runes.
const maxTextChars = 20000

// pageSignals is what a fetched document contributes to classification.
type pageSignals struct {
	Title       string
	Description string
	H1          string
	OGType      string
	SchemaTypes []string
	Text        string
	HasArticle  bool
	Links       []string
}

// extractSignals parses an HTML document, decoding it to UTF-8 using the
// Content-Type header or the document's own charset declaration. base
// resolves relative links.
func extractSignals(body []byte, contentType string, base *url.URL) (*pageSignals, error) {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(bytes.NewReader(body), contentType); err == nil {
		r = decoded
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	s := &pageSignals{
		Title:      collapse(doc.Find("title").First().Text()),
		H1:         collapse(doc.Find("h1").First().Text()),
		HasArticle: doc.Find("article").Length() > 0,
	}

	s.Description = metaContent(doc, `meta[name="description"]`)
	if s.Description == "" {
		s.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	if s.Title == "" {
		s.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	if s.Title == "" {
		s.Title = s.H1
	}
	s.OGType = strings.ToLower(metaContent(doc, `meta[property="og:type"]`))

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(sel.Text()), &v); err != nil {
			return
		}
		s.SchemaTypes = append(s.SchemaTypes, schemaTypes(v)...)
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if link, ok := resolveLink(base, href); ok {
			s.Links = append(s.Links, link)
		}
	})

	doc.Find("script, style, noscript").Remove()
	s.Text = truncateRunes(strings.ToLower(collapse(doc.Find("body").Text())), maxTextChars)

	return s, nil
}

// truncateRunes cuts s to at most n runes without splitting one.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return collapse(v)
}

// schemaTypes walks a JSON-LD value collecting @type entries, descending
// into arrays and @graph.
func schemaTypes(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			out = append(out, schemaTypes(item)...)
		}
	case map[string]any:
		switch typ := t["@type"].(type) {
		case string:
			out = append(out, typ)
		case []any:
			for _, x := range typ {
				if str, ok := x.(string); ok {
					out = append(out, str)
				}
			}
		}
		if graph, ok := t["@graph"]; ok {
			out = append(out, schemaTypes(graph)...)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var skippedSchemes = []string{"mailto:", "tel:", "javascript:", "data:"}

var assetExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico", ".pdf",
	".css", ".js", ".zip", ".mp4", ".mp3", ".woff", ".woff2", ".xml",
}

var excludedSegments = map[string]bool{
	"cart": true, "account": true, "checkout": true, "login": true,
	"logout": true, "register": true, "signin": true, "signup": true,
	"wp-admin": true, "wp-login.php": true, "search": true, "cdn-cgi": true,
}

// resolveLink turns an href into an absolute normalized URL, rejecting
// fragments, non-web schemes, static assets and account-style paths.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if excludedPath(u.Path) {
		return "", false
	}
	return normalizeURL(u), true
}

func excludedPath(path string) bool {
	p := strings.ToLower(path)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	for _, seg := range strings.Split(p, "/") {
		if excludedSegments[seg] {
			return true
		}
	}
	return false
}
