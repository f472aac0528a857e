// Package httpx is the HTTP surface of the order service: cart and order
// routes.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/order-service/app"
	"github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

type Handler struct {
	orders *app.Orchestrator
	carts  *app.CartService
}

func NewHandler(orders *app.Orchestrator, carts *app.CartService) *Handler {
	return &Handler{orders: orders, carts: carts}
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// PlaceOrder turns the caller's cart into an order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	if req.ShippingProvider == "" {
		httpx.WriteAppError(w, r, apperr.BadRequest("shipping_provider is required"))
		return
	}

	p := principal(r)
	slog.InfoContext(r.Context(), "placing order", "user_id", p.ID, "shipping_provider", req.ShippingProvider)

	order, err := h.orders.PlaceOrder(r.Context(), p, req.ShippingProvider)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, mapOrder(order))
}

// PayOrder is the payment callback. It carries no user token.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	var req PayOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}

	orderID := chi.URLParam(r, "orderId")
	slog.InfoContext(r.Context(), "paying order", "order_id", orderID, "payment_method", req.PaymentMethod)

	res, err := h.orders.PayOrder(r.Context(), orderID, app.PaymentRequest{
		Method:    req.PaymentMethod,
		Reference: req.PaymentReference,
		Amount:    req.Amount,
	})
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, PayOrderResponse{
		Order:   mapOrder(res.Order),
		Payment: mapPayment(res.Payment),
	})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.CancelOrder(r.Context(), principal(r), chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapOrder(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), principal(r))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrder(o)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), principal(r), chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapOrder(order))
}

func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orders.History(r.Context(), principal(r), chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	out := make([]TransitionResponse, len(history))
	for i, t := range history {
		out[i] = TransitionResponse{From: string(t.From), To: string(t.To), Note: t.Note, TraceID: t.TraceID, At: t.At}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.carts.Items(r.Context(), principal(r))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	out := make([]CartItemResponse, len(lines))
	for i, l := range lines {
		out[i] = mapCartLine(l)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	line, err := h.carts.Add(r.Context(), principal(r), req.ProductID, req.Quantity)
	h.writeCartLine(w, r, http.StatusCreated, line, err)
}

func (h *Handler) EditCartItem(w http.ResponseWriter, r *http.Request) {
	var req EditCartItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	line, err := h.carts.Edit(r.Context(), principal(r), req.CartID, req.Quantity)
	h.writeCartLine(w, r, http.StatusOK, line, err)
}

func (h *Handler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	var req DeleteCartItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	line, err := h.carts.Delete(r.Context(), principal(r), req.CartID)
	h.writeCartLine(w, r, http.StatusOK, line, err)
}

func (h *Handler) writeCartLine(w http.ResponseWriter, r *http.Request, status int, line domain.CartLine, err error) {
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, mapCartLine(line))
}
