// Package handler provides HTTP request handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/discovery"
	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/llm"
	"github.com/enhancemyseo/enhancemyseo/internal/middleware"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler holds the root and fallback handlers.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello returns service information.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "enhancemyseo",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{Code: code, Message: message},
	})
}

// decodeJSON reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	return false
}

// requireAuth returns the caller's auth context, writing 401 when absent.
func requireAuth(w http.ResponseWriter, r *http.Request) (*model.AuthContext, bool) {
	ac := auth.AuthFromContext(r.Context())
	if ac == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return nil, false
	}
	return ac, true
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var fieldErr *middleware.FieldError

	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", fieldErr.Error())

	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidWebsiteURL),
		errors.Is(err, service.ErrBrandRequired),
		errors.Is(err, service.ErrTopicRequired),
		errors.Is(err, service.ErrKeywordRequired),
		errors.Is(err, service.ErrNoPublishTarget),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidBulkSize),
		errors.Is(err, service.ErrInvalidPageType),
		errors.Is(err, service.ErrInvalidHistoryKind),
		errors.Is(err, service.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())

	case errors.Is(err, discovery.ErrInvalidURL),
		errors.Is(err, discovery.ErrInvalidScheme),
		errors.Is(err, discovery.ErrEmptyHost),
		errors.Is(err, discovery.ErrPrivateHost):
		writeError(w, http.StatusBadRequest, "INVALID_URL", err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")

	case errors.Is(err, service.ErrAdminOnly):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrBrandNotFound),
		errors.Is(err, service.ErrArticleNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrHistoryNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")

	case errors.Is(err, service.ErrLimitReached):
		writeError(w, http.StatusTooManyRequests, "LIMIT_REACHED", "limit reached")

	case errors.Is(err, llm.ErrInvalidResponse):
		logger.Warn("invalid llm response", "error", err)
		writeError(w, http.StatusInternalServerError, "INVALID_RESPONSE", "Invalid response format")

	case errors.Is(err, llm.ErrUpstream), errors.Is(err, llm.ErrNoProvider):
		logger.Error("llm unavailable", "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Content generation is temporarily unavailable")

	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
