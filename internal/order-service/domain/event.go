package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transition is one committed status change of an order.
type Transition struct {
	OrderID  string
	TenantID string
	From     OrderStatus
	To       OrderStatus
	Note     string
	TraceID  string
	SpanID   string
	At       time.Time
}

type EventType string

const (
	EventOrderPlaced    EventType = "order.placed"
	EventOrderPaid      EventType = "order.paid"
	EventOrderCancelled EventType = "order.cancelled"
)

// Event is published after an order transition commits.
type Event struct {
	Type        EventType       `json:"type"`
	OrderID     string          `json:"order_id"`
	TenantID    string          `json:"tenant_id"`
	UserID      string          `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// NewEvent describes the current state of o.
func NewEvent(t EventType, o Order, at time.Time) Event {
	return Event{
		Type:        t,
		OrderID:     o.ID,
		TenantID:    o.TenantID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  at,
	}
}
