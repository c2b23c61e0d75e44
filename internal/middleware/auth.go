// Package middleware provides HTTP middlewares for the dashboard: session
// and role guards, request logging and login throttling.
package middleware

import (
	"context"
	"net/http"

	"github.com/atinyakov/medstock/internal/client/session"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// LoginPath is where RequireSession sends requests without a usable session.
const LoginPath = "/login"

// Identity exposes the claims of the signed-in user.
type Identity interface {
	Claims() (*session.Claims, error)
}

// RequireSession is a middleware that enforces a signed-in user.
//
// It decodes the stored access token on every request. When no session
// exists, the token is malformed, or it expired and could not be renewed,
// the browser is redirected to the login page. On success the claims are stored in the request
// context so handlers and RequireAdmin can read them.
func RequireSession(id Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := id.Claims()
			if err != nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session is not an administrator with
// 403 Forbidden. It must run after RequireSession.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin() {
			http.Error(w, "administrator role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the claims stored by RequireSession, or nil.
func ClaimsFromContext(ctx context.Context) *session.Claims {
	claims, _ := ctx.Value(claimsKey).(*session.Claims)
	return claims
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *session.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
