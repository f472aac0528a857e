// Package ports declares what the order service needs from its storage and
// its optional sinks.
package ports

import (
	"context"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
)

// CartRepository is scoped by (tenantID, userID) on every call. Missing
// lines are store.ErrNotFound.
type CartRepository interface {
	ListCart(ctx context.Context, tenantID, userID string) ([]domain.CartLine, error)
	FindCartLineByProduct(ctx context.Context, tenantID, userID, productID string) (domain.CartLine, error)
	CreateCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error)
	UpdateCartQuantity(ctx context.Context, tenantID, userID, lineID string, quantity int) (domain.CartLine, error)
	DeleteCartLine(ctx context.Context, tenantID, userID, lineID string) (domain.CartLine, error)
}

// OrderRepository persists orders, their details and payments.
type OrderRepository interface {
	// CreateOrder writes the order and all its details as one unit.
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	// GetOrder returns the order with its details.
	GetOrder(ctx context.Context, tenantID, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context, tenantID, userID string) ([]domain.Order, error)
	GetPayment(ctx context.Context, tenantID, orderID string) (domain.Payment, error)
	// MarkPaid moves a PENDING order to PAID, assigns shippingCode and records
	// payment in one unit. A non-PENDING order is store.ErrStatusChanged.
	MarkPaid(ctx context.Context, tenantID, orderID string, payment domain.Payment, shippingCode string) (domain.Order, error)
	// MarkCancelled moves a PENDING order to CANCELLED and clears its
	// shipping fields. A non-PENDING order is store.ErrStatusChanged.
	MarkCancelled(ctx context.Context, tenantID, orderID string) (domain.Order, error)
}

// TransitionLog is the append-only audit of committed transitions.
type TransitionLog interface {
	Append(ctx context.Context, t domain.Transition) error
	History(ctx context.Context, tenantID, orderID string) ([]domain.Transition, error)
}

// EventPublisher emits order events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}
