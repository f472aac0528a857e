package auth

import (
	"net/http"
	"strings"

	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors/constants"
)

// Require authorizes every request against the scope returned by scopeOf and
// stores the principal and raw token in the request context.
func Require(chain *Chain, scopeOf func(*http.Request) Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)

			p, err := chain.Authorize(r.Context(), token, scopeOf(r))
			if err != nil {
				httpx.WriteAppError(w, r, err)
				return
			}

			ctx := interceptors.WithBearerToken(r.Context(), token)
			ctx = WithPrincipal(ctx, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope is Require with a fixed scope.
func RequireScope(chain *Chain, scope Scope) func(http.Handler) http.Handler {
	return Require(chain, func(*http.Request) Scope { return scope })
}

// BearerToken extracts the token from the Authorization header. A header
// without the Bearer prefix carries no token.
func BearerToken(r *http.Request) string {
	h := r.Header.Get(constants.HeaderAuthorization)
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
