package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/middleware"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

// KeywordGenerator produces keyword ideas for a topic.
type KeywordGenerator interface {
	Generate(ctx context.Context, ac *model.AuthContext, input service.KeywordInput) ([]string, error)
}

// KeywordHandler handles keyword generation.
type KeywordHandler struct {
	svc    KeywordGenerator
	logger *slog.Logger
}

// NewKeywordHandler creates a new KeywordHandler.
func NewKeywordHandler(svc KeywordGenerator, logger *slog.Logger) *KeywordHandler {
	return &KeywordHandler{
		svc:    svc,
		logger: logger.With("handler", "keyword"),
	}
}

// Generate handles POST /api/v1/keywords/generate.
func (h *KeywordHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req dto.KeywordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := middleware.ValidateLength("topic", req.Topic, middleware.MaxKeywordLength); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	keywords, err := h.svc.Generate(r.Context(), ac, service.KeywordInput{
		Topic:   req.Topic,
		BrandID: req.BrandID,
		Count:   req.Count,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.KeywordResponse{Keywords: keywords})
}
