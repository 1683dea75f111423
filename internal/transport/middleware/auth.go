package middleware

import (
	"net/http"
	"strings"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/pkg/ctxutil"
)

// principalValidator turns a bearer token into the authenticated principal.
// auth.JWTManager satisfies it.
type principalValidator interface {
	ValidatePrincipal(token string) (domain.Principal, error)
}

//go:generate moq -out principal_validator_mock_test.go -pkg middleware . principalValidator

// Auth returns middleware that resolves the Authorization bearer token into a
// principal and stores it in the request context. Requests without a token
// pass through anonymously so open endpoints keep working; handlers that need
// a principal reject those themselves. A token that is present but invalid is
// always a hard 401.
func Auth(validator principalValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			principal, err := validator.ValidatePrincipal(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := ctxutil.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
