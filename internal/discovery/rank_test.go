package discovery

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://Example.COM/Blog/", "https://example.com/Blog"},
		{"https://example.com/blog#top", "https://example.com/blog"},
		{"https://example.com/blog?utm_source=x", "https://example.com/blog"},
		{"https://example.com:443/a", "https://example.com/a"},
		{"http://example.com:80/a", "http://example.com/a"},
		{"http://example.com:8080/a", "http://example.com:8080/a"},
		{"https://example.com/", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := url.Parse(tt.in)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			if got := normalizeURL(u); got != tt.want {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRankDedupesKeepingBest(t *testing.T) {
	pages := []model.Page{
		{URL: "https://example.com/blog/post/", Type: model.PageBlog, Score: 10, Source: model.SourceSitemap},
		{URL: "https://example.com/blog/post#comments", Type: model.PageBlog, Score: 18, Source: model.SourceHomepage, Title: "Post"},
		{URL: "https://example.com/blog/post?ref=nav", Type: model.PageBlog, Score: 12},
	}

	got := Rank(pages, "", nil, 0)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Score != 18 || got[0].Title != "Post" {
		t.Errorf("kept %+v, want the score 18 entry", got[0])
	}
	if got[0].URL != "https://example.com/blog/post" {
		t.Errorf("URL = %q", got[0].URL)
	}
}

func TestRankDedupesWWWAndScheme(t *testing.T) {
	pages := []model.Page{
		{URL: "https://example.com/blog/a", Type: model.PageBlog, Score: 10, Source: model.SourceSitemap},
		{URL: "https://www.example.com/blog/a/", Type: model.PageBlog, Score: 14, Source: model.SourceHomepage, Title: "A"},
		{URL: "http://example.com/blog/a", Type: model.PageBlog, Score: 9},
		{URL: "https://example.com/blog/b", Type: model.PageBlog, Score: 8},
	}

	got := Rank(pages, "", nil, 0)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].URL != "https://www.example.com/blog/a" || got[0].Title != "A" {
		t.Errorf("kept %+v, want the www entry with score 14", got[0])
	}
}

func TestPageKey(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"https://example.com/a", "https://www.example.com/a/", true},
		{"http://example.com/a", "https://example.com/a", true},
		{"https://example.com/a", "https://shop.example.com/a", false},
		{"https://example.com/a", "https://example.com/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+" "+tt.b, func(t *testing.T) {
			ua, _ := url.Parse(tt.a)
			ub, _ := url.Parse(tt.b)
			if got := pageKey(ua) == pageKey(ub); got != tt.same {
				t.Errorf("pageKey equal = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestRankPrefersFetchedOnTie(t *testing.T) {
	pages := []model.Page{
		{URL: "https://example.com/about", Type: model.PageAbout, Score: 10},
		{URL: "https://example.com/about/", Type: model.PageAbout, Score: 10, Fetched: true, Title: "About"},
	}

	got := Rank(pages, "", nil, 0)
	if len(got) != 1 || !got[0].Fetched {
		t.Errorf("got %+v, want fetched entry", got)
	}
}

func TestRankFiltersSortsAndScoresRelevance(t *testing.T) {
	pages := []model.Page{
		{URL: "https://example.com/products/b", Type: model.PageProduct, Score: 10},
		{URL: "https://example.com/products/a", Type: model.PageProduct, Score: 10},
		{URL: "https://example.com/products/coffee-grinder", Type: model.PageProduct, Score: 10, Title: "Coffee Grinder"},
		{URL: "https://example.com/blog/coffee", Type: model.PageBlog, Score: 10, Description: "all about coffee"},
	}

	got := Rank(pages, "Coffee", []model.PageType{model.PageProduct}, 0)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].URL != "https://example.com/products/coffee-grinder" || got[0].Score != 16 {
		t.Errorf("first = %s (%d), want coffee-grinder (16)", got[0].URL, got[0].Score)
	}
	if got[1].URL != "https://example.com/products/a" || got[2].URL != "https://example.com/products/b" {
		t.Errorf("ties not ordered by URL: %s, %s", got[1].URL, got[2].URL)
	}
}

func TestRankLimit(t *testing.T) {
	var pages []model.Page
	for i := 0; i < 80; i++ {
		pages = append(pages, model.Page{URL: fmt.Sprintf("https://example.com/p/%02d", i), Type: model.PageProduct, Score: 10})
	}

	tests := []struct {
		limit, want int
	}{
		{0, DefaultLimit},
		{-1, DefaultLimit},
		{5, 5},
		{500, MaxLimit},
	}
	for _, tt := range tests {
		if got := len(Rank(pages, "", nil, tt.limit)); got != tt.want {
			t.Errorf("Rank(limit=%d) returned %d pages, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestQueryTokens(t *testing.T) {
	got := queryTokens("Best coffee, a coffee grinder!")
	want := []string{"best", "coffee", "grinder"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
