package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(token string) (*model.AuthContext, error)
}

// RevocationChecker reports whether a token was logged out.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Tokens   TokenParser
	Denylist RevocationChecker
}

// Auth returns a middleware that authenticates API requests with a bearer
// session token and injects the auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason string) {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", getClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
			}

			token := extractBearerToken(r)
			if token == "" {
				reject("missing_token")
				return
			}

			authCtx, err := cfg.Tokens.Parse(token)
			if err != nil {
				reject("invalid_token")
				return
			}

			if cfg.Denylist != nil {
				revoked, err := cfg.Denylist.IsTokenRevoked(r.Context(), authCtx.TokenID)
				if err != nil {
					// Redis outage: the signature and expiry were still checked.
					cfg.Logger.Error("token denylist check failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				} else if revoked {
					reject("revoked_token")
					return
				}
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken reads "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
}
