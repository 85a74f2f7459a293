package model

import "time"

// UsageKind identifies a metered generation action.
type UsageKind string

const (
	UsageArticles UsageKind = "articles"
	UsageKeywords UsageKind = "keywords"
	UsageProducts UsageKind = "products"
)

// IsValid checks if the usage kind is known.
func (k UsageKind) IsValid() bool {
	return k == UsageArticles || k == UsageKeywords || k == UsageProducts
}

// Column returns the usage table column backing this kind.
// Only valid kinds map to a column; callers must check IsValid first.
func (k UsageKind) Column() string {
	return string(k)
}

// Usage tracks a user's generation counters for one calendar month.
type Usage struct {
	UserID    string    `json:"user_id"`
	Month     string    `json:"month"` // YYYY-MM, UTC
	Articles  int       `json:"articles"`
	Keywords  int       `json:"keywords"`
	Products  int       `json:"products"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Count returns the counter for a usage kind.
func (u *Usage) Count(kind UsageKind) int {
	switch kind {
	case UsageArticles:
		return u.Articles
	case UsageKeywords:
		return u.Keywords
	case UsageProducts:
		return u.Products
	default:
		return 0
	}
}

// UsageMonth formats t as the usage month key.
func UsageMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}
