package middleware

import (
	"context"
	"net/http"
	"strings"

	"cyberqa/internal/model"
	"cyberqa/internal/service"
)

type contextKey string

const principalKey contextKey = "principal"

// AuthMiddleware resolves bearer session tokens into account principals
type AuthMiddleware struct {
	authSvc *service.AuthService
}

func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAuthenticated rejects requests without a valid session and stashes
// the resolved account in the request context.
func (m *AuthMiddleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		account, err := m.authSvc.ResolveSession(r.Context(), token)
		if err != nil {
			http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is RequireAuthenticated plus an admin role check
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		account := Principal(r.Context())
		if account == nil || !account.IsAdmin() {
			http.Error(w, `{"message":"Admin access required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// Principal extracts the resolved account from the request context
func Principal(ctx context.Context) *model.Account {
	if v := ctx.Value(principalKey); v != nil {
		return v.(*model.Account)
	}
	return nil
}

// BearerToken exposes the raw session token, used by logout
func BearerToken(r *http.Request) string {
	return extractBearerToken(r)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
