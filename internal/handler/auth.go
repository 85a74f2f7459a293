package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/middleware"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

// AccountService is the account and session surface used by AuthHandler.
type AccountService interface {
	Register(ctx context.Context, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Me(ctx context.Context, userID string) (*service.Profile, error)
	Logout(ctx context.Context, ac *model.AuthContext) error
}

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	svc    AccountService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger.With("handler", "auth"),
	}
}

func validateCredentials(req dto.CredentialsRequest) error {
	return errors.Join(
		middleware.ValidateLength("email", req.Email, middleware.MaxEmailLength),
		middleware.ValidateLength("password", req.Password, middleware.MaxPasswordLength),
	)
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateCredentials(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	result, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateCredentials(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Info("login failed", "remote_addr", r.RemoteAddr)
		}
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user logged in", "user_id", result.User.ID)
	writeJSON(w, http.StatusOK, result)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	profile, err := h.svc.Me(r.Context(), ac.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if err := h.svc.Logout(r.Context(), ac); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
