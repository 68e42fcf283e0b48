package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jsonblog/backend/internal/auth"
	"github.com/jsonblog/backend/internal/models"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "token"

// PrincipalStore is the slice of the user store the authenticator needs.
type PrincipalStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
}

// Authenticate resolves the session cookie to a Principal and stores it in
// the request context. Requests without a resolvable principal pass only
// when the whitelist marks the route public; otherwise they end here with
// 401 and never reach business logic.
//
// A malformed, expired or missing token is never an error: it simply means
// no principal. The lazy role expiry is applied before the principal is
// built, so downstream code always sees the post-downgrade role; the
// concurrent-downgrade race is benign because the persisted update is
// idempotent.
func Authenticate(store PrincipalStore, jwtSecret string, public Whitelist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := resolvePrincipal(r, store, jwtSecret)
			if principal != nil {
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
				return
			}
			if public.IsPublic(r.URL.Path, r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.NewErrorEnvelope("authentication failed"))
		})
	}
}

func resolvePrincipal(r *http.Request, store PrincipalStore, jwtSecret string) *models.Principal {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	id, err := auth.VerifyToken(jwtSecret, cookie.Value)
	if err != nil {
		return nil
	}

	user, err := store.FindByID(r.Context(), id)
	if err != nil || user == nil || user.IsDelete {
		return nil
	}

	if user.ApplyRoleExpiry(time.Now()) {
		if err := store.UpdateRole(r.Context(), user.ID, user.Role); err != nil {
			log.Printf("[auth] role downgrade persist failed user=%s err=%v", user.ID, err)
		}
	}
	return models.NewPrincipal(user)
}

// WithPrincipal returns a context carrying the resolved principal.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal extracts the request principal; nil for anonymous requests.
func GetPrincipal(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey).(*models.Principal)
	return p
}
