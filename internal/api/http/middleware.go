package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fdms-kiosk-backend/internal/security"
)

type contextKey string

const adminNameKey contextKey = "adminName"

// RequireAdmin guards admin-area routes with the kiosk-issued session token.
func RequireAdmin(tm security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "Missing admin session token")
				return
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired admin session")
				return
			}

			ctx := context.WithValue(r.Context(), adminNameKey, claims.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminName extracts the authenticated admin's display name, if any.
func AdminName(ctx context.Context) string {
	name, _ := ctx.Value(adminNameKey).(string)
	return name
}
