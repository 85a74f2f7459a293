package model

import "time"

// BrandProfile describes a business used as generation context.
type BrandProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	WebsiteURL     string    `json:"website_url,omitempty"`
	BusinessType   string    `json:"business_type,omitempty"`
	Tone           string    `json:"tone,omitempty"`
	Guidelines     string    `json:"guidelines,omitempty"`
	TargetAudience string    `json:"target_audience,omitempty"`
	Keywords       []string  `json:"keywords"`
	ShopDomain     string    `json:"shop_domain,omitempty"`
	ShopifyToken   string    `json:"-"` // Sealed at rest, never serialized
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasShopifyToken reports whether Shopify credentials are stored.
func (b *BrandProfile) HasShopifyToken() bool {
	return b.ShopifyToken != ""
}

// Website returns the site used for content discovery.
// Falls back to the Shopify storefront when no website is set.
func (b *BrandProfile) Website() string {
	if b.WebsiteURL != "" {
		return b.WebsiteURL
	}
	if b.ShopDomain != "" {
		return "https://" + b.ShopDomain
	}
	return ""
}
