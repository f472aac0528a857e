// Package httpx is the HTTP surface of the catalog service.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/marketplace/internal/catalog"
	"github.com/jcmexdev/marketplace/internal/catalog-service/app"
	"github.com/jcmexdev/marketplace/internal/catalog-service/domain"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

// ProductResponse shares id, price and quantity_available with
// catalog.ProductQuote so the batch endpoint decodes as quotes.
type ProductResponse struct {
	ID                string          `json:"id"`
	TenantID          string          `json:"tenant_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	CategoryID        *string         `json:"category_id,omitempty"`
}

type CreateProductRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	CategoryID        *string         `json:"category_id"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type CategoryResponse struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

func mapProduct(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		TenantID:          p.TenantID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		QuantityAvailable: p.QuantityAvailable,
		CategoryID:        p.CategoryID,
	}
}

func mapProducts(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, mapProduct(p))
	}
	return out
}

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ProductsByIDs(w http.ResponseWriter, r *http.Request) {
	var req catalog.QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	products, err := h.svc.ProductsByIDs(r.Context(), req.ProductIDs)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapProduct(p))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context())
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) ListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ProductsByCategory(r.Context(), chi.URLParam(r, "category_id"))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), app.NewProduct(req))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "product created", "product_id", p.ID, "price", p.Price.String())
	httpx.WriteJSON(w, http.StatusCreated, mapProduct(p))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, CategoryResponse{ID: c.ID, TenantID: c.TenantID, Name: c.Name})
}
