package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

func NewRouter(handler *Handler, chain *auth.Chain) http.Handler {
	r := httpx.NewRouter()
	admin := auth.RequireScope(chain, auth.ScopeAdmin)
	owner := auth.Require(chain, func(r *http.Request) auth.Scope {
		return auth.ScopeAdminOwnerOf(chi.URLParam(r, tenantIDParam))
	})

	r.Route("/api/tenant/v1", func(r chi.Router) {
		r.With(admin).Post("/", handler.Create)
		r.With(admin).Get("/{tenant_id}", handler.Get)
		r.With(owner).Put("/{tenant_id}", handler.Update)
		r.With(owner).Delete("/{tenant_id}", handler.Delete)
	})
	return r
}
