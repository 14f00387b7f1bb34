package middleware

import (
	"net/http"
	"strings"

	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/store"
)

// RequireAuth validates the bearer token and populates AuthContext. The
// caller's active role is resolved from the store on every request; a role
// revoked a moment ago is gone a moment later, regardless of token age.
func RequireAuth(tokens *auth.TokenService, roleStore *store.RoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ac := auth.AuthContext{
				UserID:      claims.UserID,
				HouseholdID: claims.HouseholdID,
			}
			if role, err := roleStore.GetActiveRole(claims.UserID, claims.HouseholdID); err == nil && role != nil {
				ac.Role = role.RoleType
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user holds the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
