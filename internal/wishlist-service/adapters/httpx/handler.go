// Package httpx is the HTTP surface of the wishlist service.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
	"github.com/jcmexdev/marketplace/internal/wishlist-service/app"
	"github.com/jcmexdev/marketplace/internal/wishlist-service/domain"
)

type Handler struct {
	wishlists *app.Service
}

func NewHandler(wishlists *app.Service) *Handler {
	return &Handler{wishlists: wishlists}
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func (h *Handler) ListWishlists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.wishlists.List(r.Context(), principal(r))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	out := make([]WishlistResponse, len(lists))
	for i, l := range lists {
		out[i] = mapWishlist(l)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	h.writeWishlist(w, r, http.StatusOK, list, err)
}

func (h *Handler) CreateWishlist(w http.ResponseWriter, r *http.Request) {
	var req WishlistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	list, err := h.wishlists.Create(r.Context(), principal(r), req.Name)
	h.writeWishlist(w, r, http.StatusCreated, list, err)
}

func (h *Handler) RenameWishlist(w http.ResponseWriter, r *http.Request) {
	var req WishlistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	list, err := h.wishlists.Rename(r.Context(), principal(r), chi.URLParam(r, "id"), req.Name)
	h.writeWishlist(w, r, http.StatusOK, list, err)
}

func (h *Handler) DeleteWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.Delete(r.Context(), principal(r), chi.URLParam(r, "id"))
	h.writeWishlist(w, r, http.StatusOK, list, err)
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	p := principal(r)
	slog.InfoContext(r.Context(), "adding product to wishlist", "user_id", p.ID, "wishlist_id", req.WishlistID, "product_id", req.ProductID)

	item, err := h.wishlists.AddProduct(r.Context(), p, req.WishlistID, req.ProductID)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, mapItem(item))
}

func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	var req RemoveProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	item, err := h.wishlists.RemoveProduct(r.Context(), principal(r), req.ID)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, RemovedResponse{Message: "Product removed from wishlist", Item: mapItem(item)})
}

func (h *Handler) writeWishlist(w http.ResponseWriter, r *http.Request, status int, list domain.Wishlist, err error) {
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, mapWishlist(list))
}
