package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/emotisense/emotisense/backend/internal/auth"
)

// RequireAuth validates the Authorization bearer token and injects user_id,
// email, and name from the claims into the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, `{"error":"authorization header format must be Bearer {token}"}`, http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(parts[1], key)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", claims.UserID)
			ctx = context.WithValue(ctx, "user_email", claims.Email)
			ctx = context.WithValue(ctx, "user_name", claims.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
