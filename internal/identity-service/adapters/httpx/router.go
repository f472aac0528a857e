package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

func NewRouter(handler *Handler) http.Handler {
	r := httpx.NewRouter()
	r.Route("/api/auth/v1", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/admin/register", handler.RegisterAdmin)
		r.Post("/admin/login", handler.AdminLogin)
		r.Post("/verify-token", handler.VerifyToken)
		r.Post("/verify-admin-token", handler.VerifyAdminToken)
	})
	return r
}
