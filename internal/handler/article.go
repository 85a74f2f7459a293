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

// ArticleManager is the article surface used by ArticleHandler.
type ArticleManager interface {
	Generate(ctx context.Context, ac *model.AuthContext, input service.ArticleInput) (*model.Article, error)
	List(ctx context.Context, userID, cursor string, limit int) ([]*model.Article, string, error)
	Get(ctx context.Context, userID, id string) (*model.Article, error)
	Update(ctx context.Context, userID, id string, update service.ArticleUpdate) (*model.Article, error)
	Delete(ctx context.Context, userID, id string) error
	Publish(ctx context.Context, userID, id string) (*model.Article, error)
}

// ArticleHandler handles article generation and management.
type ArticleHandler struct {
	svc    ArticleManager
	logger *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(svc ArticleManager, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		svc:    svc,
		logger: logger.With("handler", "article"),
	}
}

// Generate handles POST /api/v1/articles/generate.
func (h *ArticleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.ArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := errors.Join(
		middleware.ValidateLength("keyword", req.Keyword, middleware.MaxKeywordLength),
		middleware.ValidateURL("website_url", req.WebsiteURL),
	)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	article, err := h.svc.Generate(r.Context(), ac, service.ArticleInput{
		Keyword:    req.Keyword,
		BrandID:    req.BrandID,
		WebsiteURL: req.WebsiteURL,
		Research:   req.Research,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

// List handles GET /api/v1/articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	articles, next, err := h.svc.List(r.Context(), ac.UserID, r.URL.Query().Get("cursor"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if articles == nil {
		articles = []*model.Article{}
	}

	writeJSON(w, http.StatusOK, dto.ArticleListResponse{
		Data:       articles,
		Pagination: dto.NewPagination(next),
	})
}

// Get handles GET /api/v1/articles/{id}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	article, err := h.svc.Get(r.Context(), ac.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// Update handles PATCH /api/v1/articles/{id}.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.ArticleUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var errs []error
	if req.Title != nil {
		errs = append(errs, middleware.ValidateLength("title", *req.Title, middleware.MaxNameLength))
	}
	if req.Content != nil {
		errs = append(errs, middleware.ValidateLength("content", *req.Content, middleware.MaxContentLength))
	}
	if err := errors.Join(errs...); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	article, err := h.svc.Update(r.Context(), ac.UserID, chi.URLParam(r, "id"), service.ArticleUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// Delete handles DELETE /api/v1/articles/{id}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Publish handles POST /api/v1/articles/{id}/publish.
func (h *ArticleHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	article, err := h.svc.Publish(r.Context(), ac.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("article published", "article_id", article.ID, "publish_url", article.PublishURL)
	writeJSON(w, http.StatusOK, article)
}
