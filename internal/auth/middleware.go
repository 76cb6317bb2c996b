package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/credguard/internal/models"
	pkghttp "github.com/BradenHooton/credguard/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

// PrincipalContextKey is the key for storing token claims in context
const PrincipalContextKey contextKey = "principal"

// Middleware resolves an "Authorization: Bearer" access token to a principal
// and rejects the request with 401 otherwise.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				pkghttp.WriteUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the claims stored by Middleware, or nil.
func PrincipalFromContext(ctx context.Context) *models.TokenClaims {
	claims, ok := ctx.Value(PrincipalContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
