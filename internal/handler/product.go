package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/middleware"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

// ProductOptimizer is the product surface used by ProductHandler.
type ProductOptimizer interface {
	Optimize(ctx context.Context, ac *model.AuthContext, input service.ProductInput) (*model.GeneratedProduct, error)
	BulkOptimize(ctx context.Context, ac *model.AuthContext, brandID string, items []service.ProductInput) ([]service.BulkItemResult, error)
	List(ctx context.Context, userID, cursor string, limit int) ([]*model.GeneratedProduct, string, error)
	Delete(ctx context.Context, userID, id string) error
}

// ProductHandler handles product optimization.
type ProductHandler struct {
	svc    ProductOptimizer
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc ProductOptimizer, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		svc:    svc,
		logger: logger.With("handler", "product"),
	}
}

func validateProduct(title, description string, keywords []string) error {
	return errors.Join(
		middleware.ValidateLength("title", title, middleware.MaxNameLength),
		middleware.ValidateLength("description", description, middleware.MaxTextLength),
		middleware.ValidateList("keywords", keywords, middleware.MaxListItems, middleware.MaxKeywordLength),
	)
}

// Optimize handles POST /api/v1/products/optimize.
func (h *ProductHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateProduct(req.Title, req.Description, req.Keywords); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	product, err := h.svc.Optimize(r.Context(), ac, service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		BrandID:     req.BrandID,
		Keywords:    req.Keywords,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// BulkOptimize handles POST /api/v1/admin/products/bulk-optimize.
func (h *ProductHandler) BulkOptimize(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.BulkProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]service.ProductInput, 0, len(req.Items))
	for _, item := range req.Items {
		if err := validateProduct(item.Title, item.Description, item.Keywords); err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		items = append(items, service.ProductInput{
			Title:       item.Title,
			Description: item.Description,
			BrandID:     req.BrandID,
			Keywords:    item.Keywords,
		})
	}

	results, err := h.svc.BulkOptimize(r.Context(), ac, req.BrandID, items)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := dto.BulkProductResponse{Results: results}
	for _, res := range results {
		if res.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	h.logger.Info("bulk optimization finished",
		"user_id", ac.UserID,
		"succeeded", resp.Succeeded,
		"failed", resp.Failed,
	)
	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	products, next, err := h.svc.List(r.Context(), ac.UserID, r.URL.Query().Get("cursor"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []*model.GeneratedProduct{}
	}

	writeJSON(w, http.StatusOK, dto.ProductListResponse{
		Data:       products,
		Pagination: dto.NewPagination(next),
	})
}

// Delete handles DELETE /api/v1/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), ac.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
