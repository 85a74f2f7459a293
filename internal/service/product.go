package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/enhancemyseo/enhancemyseo/internal/history"
	"github.com/enhancemyseo/enhancemyseo/internal/llm"
	"github.com/enhancemyseo/enhancemyseo/internal/metrics"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

const (
	maxBulkItems    = 25
	bulkConcurrency = 3
)

// ProductStore persists generated product copy.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *model.GeneratedProduct) error
	ListProducts(ctx context.Context, userID, cursor string, limit int) ([]*model.GeneratedProduct, string, error)
	DeleteProduct(ctx context.Context, userID, id string) error
}

// ProductInput defines one product to optimize.
type ProductInput struct {
	Title       string
	Description string
	BrandID     string
	Keywords    []string
}

// BulkItemResult is the outcome of one bulk item. Exactly one of Product
// and Error is set.
type BulkItemResult struct {
	Index   int                     `json:"index"`
	Product *model.GeneratedProduct `json:"product,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// productCopy is the JSON object the LLM is asked to return.
type productCopy struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
}

// ProductService optimizes product listings.
type ProductService struct {
	generator
	store ProductStore
	now   func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(store ProductStore, completer Completer, brands BrandLookup, usage *UsageService, publisher HistoryPublisher, recorder metrics.Recorder, logger *slog.Logger) *ProductService {
	return &ProductService{
		generator: newGenerator(completer, brands, usage, publisher, recorder, logger.With("component", "products")),
		store:     store,
		now:       nowUTC,
	}
}

// Optimize rewrites one product's copy for search.
func (s *ProductService) Optimize(ctx context.Context, ac *model.AuthContext, input ProductInput) (*model.GeneratedProduct, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := s.checkQuota(ctx, ac, model.UsageProducts); err != nil {
		return nil, err
	}
	brand, err := s.brand(ctx, ac.UserID, input.BrandID)
	if err != nil {
		return nil, err
	}
	return s.optimize(ctx, ac, input, brand)
}

func (s *ProductService) optimize(ctx context.Context, ac *model.AuthContext, input ProductInput, brand *model.BrandProfile) (product *model.GeneratedProduct, err error) {
	start := time.Now()
	defer func() { s.finish(model.UsageProducts, start, err) }()

	out, err := s.llm.Complete(ctx, productPrompt(input, brand))
	if err != nil {
		return nil, err
	}

	var pc productCopy
	if err := llm.ExtractJSONObject(out, &pc); err != nil || strings.TrimSpace(pc.Title) == "" {
		s.logger.Warn("product response not a usable JSON object", "user_id", ac.UserID, "error", err)
		return nil, llm.ErrInvalidResponse
	}

	product = &model.GeneratedProduct{
		ID:                ulid.Make().String(),
		UserID:            ac.UserID,
		SourceTitle:       strings.TrimSpace(input.Title),
		SourceDescription: strings.TrimSpace(input.Description),
		Title:             strings.TrimSpace(pc.Title),
		Description:       pc.Description,
		MetaTitle:         strings.TrimSpace(pc.MetaTitle),
		MetaDescription:   strings.TrimSpace(pc.MetaDescription),
		Keywords:          cleanList(pc.Keywords),
		CreatedAt:         s.now(),
	}
	if brand != nil {
		product.BrandProfileID = brand.ID
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.usage.Record(ctx, ac.UserID, ac.Tier, model.UsageProducts)
	s.publisher.PublishAsync(history.NewEvent(ac.UserID, model.HistoryProduct, product.ID, product.Title))
	return product, nil
}

// BulkOptimize optimizes up to 25 products, three at a time. Item failures
// are reported per item and never fail the batch.
func (s *ProductService) BulkOptimize(ctx context.Context, ac *model.AuthContext, brandID string, items []ProductInput) ([]BulkItemResult, error) {
	if !ac.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if len(items) == 0 || len(items) > maxBulkItems {
		return nil, ErrInvalidBulkSize
	}
	brand, err := s.brand(ctx, ac.UserID, brandID)
	if err != nil {
		return nil, err
	}

	results := make([]BulkItemResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)

	for i, item := range items {
		g.Go(func() error {
			results[i].Index = i
			if strings.TrimSpace(item.Title) == "" {
				results[i].Error = ErrTitleRequired.Error()
				return nil
			}
			if err := s.checkQuota(gctx, ac, model.UsageProducts); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			if len(item.Keywords) == 0 && brand != nil {
				item.Keywords = brand.Keywords
			}
			p, err := s.optimize(gctx, ac, item, brand)
			if err != nil {
				results[i].Error = bulkErrorMessage(err)
				return nil
			}
			results[i].Product = p
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func bulkErrorMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrInvalidResponse):
		return llm.ErrInvalidResponse.Error()
	case errors.Is(err, llm.ErrUpstream), errors.Is(err, llm.ErrNoProvider):
		return "content generation unavailable"
	default:
		return "optimization failed"
	}
}

// List returns a page of the user's optimized products.
func (s *ProductService) List(ctx context.Context, userID, cursor string, limit int) ([]*model.GeneratedProduct, string, error) {
	products, next, err := s.store.ListProducts(ctx, userID, cursor, clampPageSize(limit))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, "", ErrInvalidCursor
		}
		return nil, "", fmt.Errorf("list products: %w", err)
	}
	return products, next, nil
}

// Delete removes an optimized product.
func (s *ProductService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteProduct(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func productPrompt(input ProductInput, brand *model.BrandProfile) string {
	var b strings.Builder
	b.WriteString("Rewrite this product listing so it ranks well in search and converts shoppers.\n")
	fmt.Fprintf(&b, "Product title: %s\n", strings.TrimSpace(input.Title))
	if d := strings.TrimSpace(input.Description); d != "" {
		fmt.Fprintf(&b, "Product description: %s\n", d)
	}
	if kw := cleanList(input.Keywords); len(kw) > 0 {
		fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(kw, ", "))
	}
	if brand != nil {
		fmt.Fprintf(&b, "Write as %s", brand.Name)
		if brand.Tone != "" {
			fmt.Fprintf(&b, " in a %s tone", brand.Tone)
		}
		b.WriteString(".\n")
		if brand.Guidelines != "" {
			fmt.Fprintf(&b, "Brand guidelines:\n%s\n", brand.Guidelines)
		}
	}
	b.WriteString(`Respond with only a JSON object of the form {"title": "...", "description": "<p>HTML description</p>", "meta_title": "...", "meta_description": "...", "keywords": ["..."]}.`)
	return b.String()
}
