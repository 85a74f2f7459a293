package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/llm"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// AdminUserManager inspects and re-tiers user accounts.
type AdminUserManager interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	SetTier(ctx context.Context, userID, tier string) (*model.User, error)
}

// UsageResetter deletes monthly usage counters.
type UsageResetter interface {
	Reset(ctx context.Context, userID, month string) (string, int64, error)
}

// ProviderLister reports configured LLM providers.
type ProviderLister interface {
	ListProviders() []llm.ProviderInfo
}

// AdminHandler provides admin-only account and operations endpoints.
type AdminHandler struct {
	users     AdminUserManager
	usage     UsageResetter
	providers ProviderLister
	startedAt time.Time
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. providers may be nil.
func NewAdminHandler(users AdminUserManager, usage UsageResetter, providers ProviderLister, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:     users,
		usage:     usage,
		providers: providers,
		startedAt: time.Now(),
		logger:    logger.With("handler", "admin"),
	}
}

// ResetUsage handles POST /api/v1/admin/usage/reset.
// An empty user_id resets every user for the month.
func (h *AdminHandler) ResetUsage(w http.ResponseWriter, r *http.Request) {
	var req dto.UsageResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := strings.TrimSpace(req.UserID)
	month, deleted, err := h.usage.Reset(ctx, userID, strings.TrimSpace(req.Month))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin usage reset",
		"admin_id", auth.UserIDFromContext(r.Context()),
		"user_id", userID,
		"month", month,
		"deleted", deleted,
	)
	writeJSON(w, http.StatusOK, dto.UsageResetResponse{
		UserID:  userID,
		Month:   month,
		Deleted: deleted,
	})
}

// GetUser handles GET /api/v1/admin/users/{id}.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.GetUser(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SetTier handles PATCH /api/v1/admin/users/{id}/tier.
func (h *AdminHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	var req dto.TierRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.SetTier(ctx, chi.URLParam(r, "id"), strings.ToLower(strings.TrimSpace(req.Tier)))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin tier change",
		"admin_id", auth.UserIDFromContext(r.Context()),
		"user_id", user.ID,
		"tier", user.Tier,
	)
	writeJSON(w, http.StatusOK, user)
}

// StatsResponse represents operational statistics.
type StatsResponse struct {
	Timestamp time.Time          `json:"timestamp"`
	Service   string             `json:"service"`
	Version   string             `json:"version"`
	Uptime    string             `json:"uptime"`
	Providers []llm.ProviderInfo `json:"providers"`
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{
		Timestamp: time.Now().UTC(),
		Service:   "enhancemyseo",
		Version:   Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Providers: []llm.ProviderInfo{},
	}
	if h.providers != nil {
		response.Providers = h.providers.ListProviders()
	}
	writeJSON(w, http.StatusOK, response)
}
