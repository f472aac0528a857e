package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

// NewRouter mounts the catalog routes. Writes require an admin who owns
// tenantID.
func NewRouter(handler *Handler, chain *auth.Chain, tenantID string) http.Handler {
	r := httpx.NewRouter()
	owner := auth.RequireScope(chain, auth.ScopeAdminOwnerOf(tenantID))

	r.Route("/api/product/v1", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Post("/many", handler.ProductsByIDs)
		r.Get("/category/{category_id}", handler.ListProductsByCategory)
		r.Get("/{id}", handler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(owner)
			r.Post("/", handler.CreateProduct)
			r.Post("/category", handler.CreateCategory)
		})
	})
	return r
}
