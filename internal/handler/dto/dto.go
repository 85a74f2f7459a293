// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination provides cursor-based pagination info.
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// NewPagination builds pagination info from the next cursor.
func NewPagination(nextCursor string) *Pagination {
	return &Pagination{
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BrandRequest is the body for creating a brand profile.
type BrandRequest struct {
	Name           string   `json:"name"`
	WebsiteURL     string   `json:"website_url,omitempty"`
	BusinessType   string   `json:"business_type,omitempty"`
	Tone           string   `json:"tone,omitempty"`
	Guidelines     string   `json:"guidelines,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	ShopDomain     string   `json:"shop_domain,omitempty"`
	ShopifyToken   string   `json:"shopify_token,omitempty"`
}

// BrandUpdateRequest is a partial brand update. Absent fields are left
// unchanged; an explicit empty shopify_token clears the stored token.
type BrandUpdateRequest struct {
	Name           *string   `json:"name,omitempty"`
	WebsiteURL     *string   `json:"website_url,omitempty"`
	BusinessType   *string   `json:"business_type,omitempty"`
	Tone           *string   `json:"tone,omitempty"`
	Guidelines     *string   `json:"guidelines,omitempty"`
	TargetAudience *string   `json:"target_audience,omitempty"`
	Keywords       *[]string `json:"keywords,omitempty"`
	ShopDomain     *string   `json:"shop_domain,omitempty"`
	ShopifyToken   *string   `json:"shopify_token,omitempty"`
}

// BrandResponse is a brand profile in API responses.
type BrandResponse struct {
	*model.BrandProfile
	HasShopifyToken bool `json:"has_shopify_token"`
}

// ToBrandResponse converts a BrandProfile model to its response DTO.
func ToBrandResponse(b *model.BrandProfile) *BrandResponse {
	return &BrandResponse{BrandProfile: b, HasShopifyToken: b.HasShopifyToken()}
}

// BrandListResponse is the list of a user's brand profiles.
type BrandListResponse struct {
	Data []*BrandResponse `json:"data"`
}

// KeywordRequest is the body of keyword generation.
type KeywordRequest struct {
	Topic   string `json:"topic"`
	BrandID string `json:"brand_id,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// KeywordResponse wraps generated keywords.
type KeywordResponse struct {
	Keywords []string `json:"keywords"`
}

// ArticleRequest is the body of article generation.
type ArticleRequest struct {
	Keyword    string `json:"keyword"`
	BrandID    string `json:"brand_id"`
	WebsiteURL string `json:"website_url,omitempty"`
	Research   *bool  `json:"research,omitempty"`
}

// ArticleUpdateRequest edits an article's title or content.
type ArticleUpdateRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ArticleListResponse is a page of articles.
type ArticleListResponse struct {
	Data       []*model.Article `json:"data"`
	Pagination *Pagination      `json:"pagination"`
}

// ProductRequest is the body of product optimization.
type ProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	BrandID     string   `json:"brand_id,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// BulkProductItem is one product in a bulk request.
type BulkProductItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// BulkProductRequest is the body of bulk product optimization.
type BulkProductRequest struct {
	BrandID string            `json:"brand_id,omitempty"`
	Items   []BulkProductItem `json:"items"`
}

// BulkProductResponse carries per-item bulk results.
type BulkProductResponse struct {
	Results   []service.BulkItemResult `json:"results"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
}

// ProductListResponse is a page of generated products.
type ProductListResponse struct {
	Data       []*model.GeneratedProduct `json:"data"`
	Pagination *Pagination               `json:"pagination"`
}

// DiscoveryRequest is the body of a content discovery search.
type DiscoveryRequest struct {
	URL   string   `json:"url"`
	Query string   `json:"query,omitempty"`
	Limit int      `json:"limit,omitempty"`
	Types []string `json:"types,omitempty"`
}

// HistoryListResponse is a user's recent activity.
type HistoryListResponse struct {
	Data []*model.HistoryItem `json:"data"`
}

// ClearedResponse reports how many rows a bulk delete removed.
type ClearedResponse struct {
	Deleted int64 `json:"deleted"`
}

// UsageResetRequest is the body of an admin usage reset.
type UsageResetRequest struct {
	UserID string `json:"user_id,omitempty"`
	Month  string `json:"month,omitempty"`
}

// UsageResetResponse reports the reset scope and rows removed.
type UsageResetResponse struct {
	UserID  string `json:"user_id,omitempty"`
	Month   string `json:"month"`
	Deleted int64  `json:"deleted"`
}

// TierRequest changes a user's subscription tier.
type TierRequest struct {
	Tier string `json:"tier"`
}
