package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

// HistoryReader is the activity feed surface used by HistoryHandler.
type HistoryReader interface {
	List(ctx context.Context, userID, kind string, limit int) ([]*model.HistoryItem, error)
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

// UsageReporter reports a user's monthly usage.
type UsageReporter interface {
	Summary(ctx context.Context, userID, tier string) (*service.UsageSummary, error)
}

// ActivityHandler serves a user's history feed and usage counters.
type ActivityHandler struct {
	history HistoryReader
	usage   UsageReporter
	logger  *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(history HistoryReader, usage UsageReporter, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		history: history,
		usage:   usage,
		logger:  logger.With("handler", "activity"),
	}
}

// ListHistory handles GET /api/v1/history?kind=&limit=.
func (h *ActivityHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	items, err := h.history.List(r.Context(), ac.UserID, r.URL.Query().Get("kind"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*model.HistoryItem{}
	}

	writeJSON(w, http.StatusOK, dto.HistoryListResponse{Data: items})
}

// DeleteHistory handles DELETE /api/v1/history/{id}.
func (h *ActivityHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if err := h.history.Delete(r.Context(), ac.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearHistory handles DELETE /api/v1/history.
func (h *ActivityHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	n, err := h.history.Clear(r.Context(), ac.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClearedResponse{Deleted: n})
}

// Usage handles GET /api/v1/usage.
func (h *ActivityHandler) Usage(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	summary, err := h.usage.Summary(r.Context(), ac.UserID, ac.Tier)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
