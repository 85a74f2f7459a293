package discovery

import (
	"testing"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		url  string
		want model.PageType
	}{
		{"https://example.com/blog/2024/01/", model.PageBlog},
		{"https://example.com/blog/2024/01/spring-launch", model.PageBlog},
		{"https://example.com/products/widget", model.PageProduct},
		{"https://example.com/p/12345", model.PageProduct},
		{"https://example.com/services/seo-audit", model.PageService},
		{"https://example.com/collections/summer", model.PageCategory},
		{"https://example.com/about-us", model.PageAbout},
		{"https://example.com/news", model.PageBlog},
		{"https://example.com/contact", model.PageOther},
		{"https://example.com/2024/03/some-post", model.PageBlog},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, _ := ClassifyURL(tt.url)
			if got != tt.want {
				t.Errorf("ClassifyURL(%q) = %s, want %s", tt.url, got, tt.want)
			}
		})
	}
}

func TestClassifyScores(t *testing.T) {
	_, score := ClassifyURL("https://example.com/blog/2024/01/")
	if score != patternPoints+datePathPoints {
		t.Errorf("score = %d, want %d", score, patternPoints+datePathPoints)
	}

	_, score = ClassifyURL("https://example.com/contact")
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

func TestClassifyWithSignals(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		signals *pageSignals
		want    model.PageType
	}{
		{
			name: "product hints on neutral path",
			path: "/widget-pro",
			signals: &pageSignals{
				OGType: "product",
				Text:   "widget pro add to cart in stock",
			},
			want: model.PageProduct,
		},
		{
			name: "json-ld blog posting",
			path: "/spring-update",
			signals: &pageSignals{
				SchemaTypes: []string{"BlogPosting"},
				HasArticle:  true,
			},
			want: model.PageBlog,
		},
		{
			name: "about keywords",
			path: "/hello",
			signals: &pageSignals{
				Text: "our story began when we were founded. meet our team",
			},
			want: model.PageAbout,
		},
		{
			name:    "weak signals stay other",
			path:    "/hello",
			signals: &pageSignals{Text: "price"},
			want:    model.PageOther,
		},
		{
			name: "keyword points are capped",
			path: "/blog/welcome",
			signals: &pageSignals{
				Text: "add to cart buy now in stock price sku add to bag reviews",
			},
			want: model.PageBlog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := classify(tt.path, tt.signals)
			if got != tt.want {
				t.Errorf("classify(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestClassifyTieBreaksInTypeOrder(t *testing.T) {
	// Both blog and about patterns match once.
	got, _ := classify("/blog/about", nil)
	if got != model.PageBlog {
		t.Errorf("classify tie = %s, want blog", got)
	}
}
