package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

func NewRouter(handler *Handler, chain *auth.Chain) http.Handler {
	r := httpx.NewRouter()
	user := auth.RequireScope(chain, auth.ScopeUser)

	r.Route("/api/cart", func(r chi.Router) {
		r.With(user).Get("/", handler.ListCart)
		r.Route("/v1", func(r chi.Router) {
			r.Use(user)
			r.Post("/", handler.AddCartItem)
			r.Put("/", handler.EditCartItem)
			r.Delete("/", handler.DeleteCartItem)
		})
	})

	r.Route("/api/order/v1", func(r chi.Router) {
		r.Post("/{orderId}/pay", handler.PayOrder)

		r.Group(func(r chi.Router) {
			r.Use(user)
			r.Get("/", handler.ListOrders)
			r.Post("/", handler.PlaceOrder)
			r.Get("/{orderId}", handler.GetOrder)
			r.Post("/{orderId}/cancel", handler.CancelOrder)
			r.Get("/{orderId}/history", handler.OrderHistory)
		})
	})
	return r
}
