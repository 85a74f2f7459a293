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

// BrandManager is the brand profile surface used by BrandHandler.
type BrandManager interface {
	Create(ctx context.Context, userID string, input service.BrandInput) (*model.BrandProfile, error)
	Get(ctx context.Context, userID, id string) (*model.BrandProfile, error)
	List(ctx context.Context, userID string) ([]*model.BrandProfile, error)
	Update(ctx context.Context, userID, id string, patch service.BrandPatch) (*model.BrandProfile, error)
	Delete(ctx context.Context, userID, id string) error
}

// BrandHandler handles brand profile CRUD.
type BrandHandler struct {
	svc    BrandManager
	logger *slog.Logger
}

// NewBrandHandler creates a new BrandHandler.
func NewBrandHandler(svc BrandManager, logger *slog.Logger) *BrandHandler {
	return &BrandHandler{
		svc:    svc,
		logger: logger.With("handler", "brand"),
	}
}

// Create handles POST /api/v1/brands.
func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.BrandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateBrandFields(&req.Name, &req.WebsiteURL, &req.Guidelines, &req.TargetAudience, &req.Keywords); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	brand, err := h.svc.Create(r.Context(), ac.UserID, service.BrandInput{
		Name:           req.Name,
		WebsiteURL:     req.WebsiteURL,
		BusinessType:   req.BusinessType,
		Tone:           req.Tone,
		Guidelines:     req.Guidelines,
		TargetAudience: req.TargetAudience,
		Keywords:       req.Keywords,
		ShopDomain:     req.ShopDomain,
		ShopifyToken:   req.ShopifyToken,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToBrandResponse(brand))
}

// List handles GET /api/v1/brands.
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	brands, err := h.svc.List(r.Context(), ac.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := dto.BrandListResponse{Data: make([]*dto.BrandResponse, 0, len(brands))}
	for _, b := range brands {
		resp.Data = append(resp.Data, dto.ToBrandResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/brands/{id}.
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	brand, err := h.svc.Get(r.Context(), ac.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBrandResponse(brand))
}

// Update handles PATCH /api/v1/brands/{id}.
func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.BrandUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var keywords []string
	if req.Keywords != nil {
		keywords = *req.Keywords
	}
	if err := validateBrandFields(req.Name, req.WebsiteURL, req.Guidelines, req.TargetAudience, &keywords); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	brand, err := h.svc.Update(r.Context(), ac.UserID, chi.URLParam(r, "id"), service.BrandPatch{
		Name:           req.Name,
		WebsiteURL:     req.WebsiteURL,
		BusinessType:   req.BusinessType,
		Tone:           req.Tone,
		Guidelines:     req.Guidelines,
		TargetAudience: req.TargetAudience,
		Keywords:       req.Keywords,
		ShopDomain:     req.ShopDomain,
		ShopifyToken:   req.ShopifyToken,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBrandResponse(brand))
}

// Delete handles DELETE /api/v1/brands/{id}.
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// validateBrandFields bounds free-text brand fields. Nil pointers are skipped.
func validateBrandFields(name, website, guidelines, audience *string, keywords *[]string) error {
	var errs []error
	check := func(field string, v *string, max int) {
		if v != nil {
			errs = append(errs, middleware.ValidateLength(field, *v, max))
		}
	}
	check("name", name, middleware.MaxNameLength)
	check("guidelines", guidelines, middleware.MaxTextLength)
	check("target_audience", audience, middleware.MaxTextLength)
	if website != nil && *website != "" {
		errs = append(errs, middleware.ValidateURL("website_url", *website))
	}
	if keywords != nil {
		errs = append(errs, middleware.ValidateList("keywords", *keywords, middleware.MaxListItems, middleware.MaxKeywordLength))
	}
	return errors.Join(errs...)
}
