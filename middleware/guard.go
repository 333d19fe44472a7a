// Package middleware adapts the engine to net/http route handlers: a
// bearer-token guard that resolves a principal into the request
// context, and a role gate layered on top of it.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mednet-labs/studyguard"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal stored by [Guard].
func PrincipalFromContext(ctx context.Context) (*studyguard.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*studyguard.Principal)
	return p, ok
}

// Guard authenticates the bearer token on every request and injects the
// resolved principal into the request context. Failures map to 401 for
// credential problems and 403 for the organization gate.
func Guard(engine *studyguard.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, studyguard.ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a handler on the principal resolved by [Guard].
func RequireRole(engine *studyguard.Engine, allowed ...studyguard.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())
			if err := engine.RequireRole(r.Context(), principal, allowed...); err != nil {
				if errors.Is(err, studyguard.ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
