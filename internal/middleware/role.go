package middleware

import (
	"net/http"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
)

// RequireAdmin returns middleware that only lets admins through.
// Must be applied after Auth middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			if !authCtx.IsAdmin() {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
