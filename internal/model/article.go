package model

import "time"

// Article is a generated long-form SEO article.
type Article struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	BrandProfileID string     `json:"brand_profile_id"`
	Keyword        string     `json:"keyword"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Research       string     `json:"research,omitempty"`
	InternalLinks  []string   `json:"internal_links"`
	Published      bool       `json:"published"`
	PublishURL     string     `json:"publish_url,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// GeneratedProduct is optimized product copy produced by the LLM.
type GeneratedProduct struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	BrandProfileID    string    `json:"brand_profile_id,omitempty"`
	SourceTitle       string    `json:"source_title"`
	SourceDescription string    `json:"source_description,omitempty"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	MetaTitle         string    `json:"meta_title"`
	MetaDescription   string    `json:"meta_description"`
	Keywords          []string  `json:"keywords"`
	CreatedAt         time.Time `json:"created_at"`
}
