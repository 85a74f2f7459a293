package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/enhancemyseo/enhancemyseo/internal/discovery"
	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/middleware"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// SiteSearcher runs content discovery on behalf of a user.
type SiteSearcher interface {
	SearchForUser(ctx context.Context, userID string, req discovery.Request) (*discovery.Result, error)
}

// DiscoveryHandler handles content discovery searches.
type DiscoveryHandler struct {
	svc    SiteSearcher
	logger *slog.Logger
}

// NewDiscoveryHandler creates a new DiscoveryHandler.
func NewDiscoveryHandler(svc SiteSearcher, logger *slog.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		svc:    svc,
		logger: logger.With("handler", "discovery"),
	}
}

// Search handles POST /api/v1/discovery/search.
func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.DiscoveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := middleware.ValidateURL("url", req.URL); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := middleware.ValidateLength("query", req.Query, middleware.MaxKeywordLength); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	types := make([]model.PageType, 0, len(req.Types))
	for _, t := range req.Types {
		types = append(types, model.PageType(strings.ToLower(strings.TrimSpace(t))))
	}

	result, err := h.svc.SearchForUser(r.Context(), ac.UserID, discovery.Request{
		URL:   req.URL,
		Query: req.Query,
		Limit: req.Limit,
		Types: types,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
