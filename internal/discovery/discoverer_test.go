package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSite(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var secretHits atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			fmt.Fprintf(w, "User-agent: *\nDisallow: /private\nSitemap: %s/sitemap.xml\n", srv.URL)
		case "/sitemap.xml":
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<urlset>
<url><loc>%[1]s/blog/2024/01/spring-launch</loc></url>
<url><loc>%[1]s/products/widget</loc></url>
<url><loc>%[1]s/private/secret</loc></url>
<url><loc>https://other.example.org/blog/elsewhere</loc></url>
</urlset>`, srv.URL)
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><head><title>Home</title></head><body>
<a href="/about">About</a>
<a href="/cart">Cart</a>
<a href="mailto:x@example.com">Mail</a>
<a href="/logo.png">Logo</a>
<a href="/products/widget?ref=home">Widget</a>
</body></html>`)
		case "/blog/2024/01/spring-launch":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Spring Launch</title>
<meta name="description" content="Our new widget line"></head>
<body><article><h1>Spring Launch</h1>Posted on January 3</article></body></html>`)
		case "/products/widget":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Widget</title><meta property="og:type" content="product"></head>
<body><h1>Widget</h1><button>Add to cart</button></body></html>`)
		case "/about":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>About Us</title></head><body>Our story</body></html>`)
		case "/private/secret":
			secretHits.Add(1)
			fmt.Fprint(w, `<html><title>Secret</title></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &secretHits
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AllowPrivate = true
	cfg.HostRPS = 0
	return cfg
}

func TestCrawl(t *testing.T) {
	srv, secretHits := newTestSite(t)
	d := New(testConfig(), testLogger())

	index, err := d.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	byURL := make(map[string]model.Page)
	for _, p := range index.Pages {
		byURL[p.URL] = p
	}

	blog, ok := byURL[srv.URL+"/blog/2024/01/spring-launch"]
	if !ok {
		t.Fatalf("blog post not discovered: %+v", index.Pages)
	}
	if blog.Type != model.PageBlog || blog.Title != "Spring Launch" || blog.Description != "Our new widget line" {
		t.Errorf("blog page = %+v", blog)
	}
	if blog.Source != model.SourceSitemap || !blog.Fetched {
		t.Errorf("blog source = %s fetched = %v", blog.Source, blog.Fetched)
	}

	product, ok := byURL[srv.URL+"/products/widget"]
	if !ok || product.Type != model.PageProduct || product.Title != "Widget" {
		t.Errorf("product page = %+v (found %v)", product, ok)
	}

	about, ok := byURL[srv.URL+"/about"]
	if !ok || about.Type != model.PageAbout || about.Source != model.SourceHomepage {
		t.Errorf("about page = %+v (found %v)", about, ok)
	}

	for _, unwanted := range []string{"/private/secret", "/cart", "/logo.png"} {
		if _, ok := byURL[srv.URL+unwanted]; ok {
			t.Errorf("%s should not be a candidate", unwanted)
		}
	}
	if _, ok := byURL["https://other.example.org/blog/elsewhere"]; ok {
		t.Error("off-site sitemap entry kept")
	}
	if secretHits.Load() != 0 {
		t.Errorf("robots-disallowed page fetched %d times", secretHits.Load())
	}

	wantPhases := []string{PhaseRobots, PhaseSitemap, PhaseHomepage, PhaseProbe, PhaseFetch}
	if strings.Join(index.Phases, ",") != strings.Join(wantPhases, ",") {
		t.Errorf("Phases = %v, want %v", index.Phases, wantPhases)
	}
}

func TestDiscoverFiltersAndRanks(t *testing.T) {
	srv, _ := newTestSite(t)
	d := New(testConfig(), testLogger())

	res, err := d.Discover(context.Background(), Request{
		URL:   srv.URL,
		Query: "widget",
		Types: []model.PageType{model.PageProduct, model.PageBlog},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(res.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2: %+v", len(res.Pages), res.Pages)
	}
	if res.Pages[0].Type != model.PageBlog && res.Pages[0].Type != model.PageProduct {
		t.Errorf("unexpected type %s", res.Pages[0].Type)
	}
	if res.Pages[0].Score < res.Pages[1].Score {
		t.Errorf("pages not sorted by score: %d < %d", res.Pages[0].Score, res.Pages[1].Score)
	}
	if res.Phases[len(res.Phases)-1] != PhaseRank {
		t.Errorf("last phase = %s, want rank", res.Phases[len(res.Phases)-1])
	}
}

func TestCrawlRejectsPrivateSite(t *testing.T) {
	d := New(DefaultConfig(), testLogger())
	if _, err := d.Crawl(context.Background(), "http://127.0.0.1:1"); err != ErrPrivateHost {
		t.Errorf("Crawl() error = %v, want ErrPrivateHost", err)
	}
}

func TestCrawlStopsAtBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Budget = 150 * time.Millisecond
	d := New(cfg, testLogger())

	start := time.Now()
	index, err := d.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Crawl took %v, budget not enforced", elapsed)
	}
	if len(index.Pages) != 0 {
		t.Errorf("Pages = %v, want none", index.Pages)
	}
}
