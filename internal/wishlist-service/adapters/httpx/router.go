package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

// NewRouter mounts the wishlist routes. Every route needs a user token of
// the service tenant.
func NewRouter(handler *Handler, chain *auth.Chain) http.Handler {
	r := httpx.NewRouter()

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(auth.RequireScope(chain, auth.ScopeUser))
		r.Get("/", handler.ListWishlists)
		r.Post("/", handler.CreateWishlist)
		r.Get("/{id}", handler.GetWishlist)

		r.Route("/v1", func(r chi.Router) {
			r.Post("/add", handler.AddProduct)
			r.Delete("/remove", handler.RemoveProduct)
			r.Put("/{id}", handler.RenameWishlist)
			r.Delete("/{id}", handler.DeleteWishlist)
		})
	})
	return r
}
