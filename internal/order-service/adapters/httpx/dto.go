package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
)

type PlaceOrderRequest struct {
	ShippingProvider string `json:"shipping_provider"`
}

type PayOrderRequest struct {
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Amount           decimal.Decimal `json:"amount"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type EditCartItemRequest struct {
	CartID   string `json:"cart_id"`
	Quantity int    `json:"quantity"`
}

type DeleteCartItemRequest struct {
	CartID string `json:"cart_id"`
}

type OrderResponse struct {
	ID               string                `json:"id"`
	TenantID         string                `json:"tenant_id"`
	UserID           string                `json:"user_id"`
	OrderDate        time.Time             `json:"order_date"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	OrderStatus      domain.OrderStatus    `json:"order_status"`
	ShippingProvider string                `json:"shipping_provider"`
	ShippingCode     *string               `json:"shipping_code"`
	ShippingStatus   *string               `json:"shipping_status"`
	OrderDetails     []OrderDetailResponse `json:"order_details,omitempty"`
}

type OrderDetailResponse struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type PaymentResponse struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	PaymentDate      time.Time       `json:"payment_date"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Amount           decimal.Decimal `json:"amount"`
}

type PayOrderResponse struct {
	Order   OrderResponse   `json:"order"`
	Payment PaymentResponse `json:"payment"`
}

type CartItemResponse struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type TransitionResponse struct {
	From    string    `json:"from_status"`
	To      string    `json:"to_status"`
	Note    string    `json:"note,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
	At      time.Time `json:"updated_at"`
}

func mapOrder(o domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		TenantID:         o.TenantID,
		UserID:           o.UserID,
		OrderDate:        o.OrderDate,
		TotalAmount:      o.TotalAmount,
		OrderStatus:      o.Status,
		ShippingProvider: string(o.ShippingProvider),
		ShippingCode:     o.ShippingCode,
	}
	if o.ShippingStatus != nil {
		st := string(*o.ShippingStatus)
		resp.ShippingStatus = &st
	}
	for _, d := range o.Details {
		resp.OrderDetails = append(resp.OrderDetails, OrderDetailResponse{
			ID:        d.ID,
			OrderID:   d.OrderID,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
		})
	}
	return resp
}

func mapPayment(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		OrderID:          p.OrderID,
		PaymentDate:      p.Date,
		PaymentMethod:    p.Method,
		PaymentReference: p.Reference,
		Amount:           p.Amount,
	}
}

func mapCartLine(l domain.CartLine) CartItemResponse {
	return CartItemResponse{
		ID:        l.ID,
		TenantID:  l.TenantID,
		UserID:    l.UserID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
	}
}
