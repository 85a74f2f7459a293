package model

import "time"

// PageType is the classification assigned to a discovered page.
type PageType string

const (
	PageBlog     PageType = "blog"
	PageProduct  PageType = "product"
	PageService  PageType = "service"
	PageCategory PageType = "category"
	PageAbout    PageType = "about"
	PageOther    PageType = "other"
)

// PageTypes lists classifications in tie-break order.
var PageTypes = []PageType{PageBlog, PageProduct, PageService, PageCategory, PageAbout}

// IsValid checks if the page type is known.
func (t PageType) IsValid() bool {
	if t == PageOther {
		return true
	}
	for _, pt := range PageTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// PageSource records which discovery phase found a page.
type PageSource string

const (
	SourceSitemap  PageSource = "sitemap"
	SourceHomepage PageSource = "homepage"
	SourceProbe    PageSource = "probe"
)

// Page is a discovered and classified page of a website.
type Page struct {
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Type        PageType   `json:"type"`
	Score       int        `json:"score"`
	Source      PageSource `json:"source"`
	Fetched     bool       `json:"fetched"`
}

// SiteIndex is the classified page inventory of one site, before query
// relevance, type filtering and truncation are applied.
type SiteIndex struct {
	Site      string    `json:"site"`
	Pages     []Page    `json:"pages"`
	Phases    []string  `json:"phases"`
	CrawledAt time.Time `json:"crawled_at"`
}
