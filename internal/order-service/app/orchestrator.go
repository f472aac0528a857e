// Package app drives the order lifecycle: placement from a priced cart
// snapshot, payment and cancellation.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/catalog"
	"github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/order-service/orderlog"
	"github.com/jcmexdev/marketplace/internal/order-service/ports"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/pkg/cache"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
	"github.com/jcmexdev/marketplace/internal/store"
)

const replayTTL = 24 * time.Hour

// Orchestrator is bound to the one tenant its process serves.
type Orchestrator struct {
	tenantID string
	carts    ports.CartRepository
	orders   ports.OrderRepository
	pricer   catalog.Pricer

	transitions ports.TransitionLog  // nil-safe
	publisher   ports.EventPublisher // nil-safe
	replays     cache.Cache          // nil-safe

	now    func() time.Time
	tracer trace.Tracer
}

type Option func(*Orchestrator)

// WithTransitionLog appends every committed transition to l.
func WithTransitionLog(l ports.TransitionLog) Option {
	return func(o *Orchestrator) { o.transitions = l }
}

// WithPublisher emits an event after every committed transition.
func WithPublisher(p ports.EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithReplayCache enables placement replay for requests carrying an
// idempotency key.
func WithReplayCache(c cache.Cache) Option {
	return func(o *Orchestrator) { o.replays = c }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(tenantID string, carts ports.CartRepository, orders ports.OrderRepository, pricer catalog.Pricer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tenantID: tenantID,
		carts:    carts,
		orders:   orders,
		pricer:   pricer,
		now:      time.Now,
		tracer:   otel.Tracer("github.com/jcmexdev/marketplace/internal/order-service/app"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PaymentRequest is the body of a payment callback.
type PaymentRequest struct {
	Method    string
	Reference string
	Amount    decimal.Decimal
}

type PaymentResult struct {
	Order   domain.Order
	Payment domain.Payment
}

// PlaceOrder turns the caller's cart into a PENDING order. The catalog is
// asked once, before anything is written; any pricing failure leaves no
// trace in storage.
func (o *Orchestrator) PlaceOrder(ctx context.Context, p auth.Principal, shippingProvider string) (_ domain.Order, err error) {
	ctx, span := o.tracer.Start(ctx, "PlaceOrder", trace.WithAttributes(
		attribute.String("tenant.id", o.tenantID),
		attribute.String("user.id", p.ID),
		attribute.String("shipping.provider", shippingProvider),
	))
	defer func() { endSpan(span, err) }()

	provider, ok := domain.ParseShippingProvider(shippingProvider)
	if !ok {
		return domain.Order{}, apperr.NotFound("Shipping provider not found")
	}
	if p.Anonymous() {
		return domain.Order{}, apperr.Internal("User id not found", errors.New("anonymous principal"))
	}

	replayKey := o.replayKey(ctx, p)
	if order, found := o.replay(ctx, replayKey); found {
		slog.InfoContext(ctx, "replaying placed order", "order_id", order.ID)
		return order, nil
	}

	lines, err := o.carts.ListCart(ctx, o.tenantID, p.ID)
	if err != nil {
		return domain.Order{}, apperr.Internal("Failed to read cart", err)
	}
	quantities, productIDs := mergeLines(lines)
	if len(productIDs) == 0 {
		return domain.Order{}, apperr.BadRequest("Cart is empty")
	}

	quotes, err := o.pricer.Quote(ctx, productIDs)
	if err != nil {
		return domain.Order{}, apperr.Internal("Failed to get products", err)
	}

	details, err := priceDetails(o.tenantID, productIDs, quantities, catalog.Index(quotes))
	if err != nil {
		return domain.Order{}, err
	}

	order, err := o.orders.CreateOrder(ctx, domain.Order{
		ID:               uuid.NewString(),
		TenantID:         o.tenantID,
		UserID:           p.ID,
		OrderDate:        o.now().UTC(),
		TotalAmount:      domain.Total(details),
		Status:           domain.StatusPending,
		ShippingProvider: provider,
		Details:          details,
	})
	if err != nil {
		return domain.Order{}, storeError("Failed to create order", err)
	}

	slog.InfoContext(ctx, "order placed",
		"order_id", order.ID, "lines", len(order.Details), "total", order.TotalAmount.String())
	o.committed(ctx, order, "", domain.EventOrderPlaced, "placed")
	o.remember(ctx, replayKey, order.ID)
	return order, nil
}

// mergeLines sums quantities per product, keeping first-seen order.
func mergeLines(lines []domain.CartLine) (map[string]int, []string) {
	quantities := make(map[string]int, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, seen := quantities[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		quantities[l.ProductID] += l.Quantity
	}
	return quantities, ids
}

func priceDetails(tenantID string, productIDs []string, quantities map[string]int, quotes map[string]catalog.ProductQuote) ([]domain.OrderDetail, error) {
	details := make([]domain.OrderDetail, 0, len(productIDs))
	for _, id := range productIDs {
		q, ok := quotes[id]
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("Product %s not found", id))
		}
		qty := quantities[id]
		if qty > q.AvailableQuantity {
			return nil, apperr.BadRequest(fmt.Sprintf("Insufficient stock for product %s", id))
		}
		details = append(details, domain.OrderDetail{
			ID:        uuid.NewString(),
			TenantID:  tenantID,
			ProductID: id,
			Quantity:  qty,
			UnitPrice: q.UnitPrice,
		})
	}
	return details, nil
}

// PayOrder records a payment for a PENDING order. A replay carrying the same
// reference returns the existing payment; nothing is written twice.
func (o *Orchestrator) PayOrder(ctx context.Context, orderID string, req PaymentRequest) (_ PaymentResult, err error) {
	ctx, span := o.tracer.Start(ctx, "PayOrder", trace.WithAttributes(
		attribute.String("tenant.id", o.tenantID),
		attribute.String("order.id", orderID),
	))
	defer func() { endSpan(span, err) }()

	switch {
	case orderID == "":
		return PaymentResult{}, apperr.BadRequest("Order id is required")
	case req.Method == "" || req.Reference == "":
		return PaymentResult{}, apperr.BadRequest("payment_method and payment_reference are required")
	case req.Amount.IsNegative():
		return PaymentResult{}, apperr.BadRequest("amount must not be negative")
	}

	order, err := o.loadOrder(ctx, orderID)
	if err != nil {
		return PaymentResult{}, err
	}
	return o.settle(ctx, order, req, true)
}

func (o *Orchestrator) settle(ctx context.Context, order domain.Order, req PaymentRequest, retry bool) (PaymentResult, error) {
	switch order.Status {
	case domain.StatusPaid:
		return o.replayPayment(ctx, order, req)
	case domain.StatusCancelled:
		return PaymentResult{}, apperr.BadRequest("Order is cancelled")
	}
	if !req.Amount.Equal(order.TotalAmount) {
		return PaymentResult{}, apperr.BadRequest("Amount does not match order total")
	}

	payment := domain.Payment{
		ID:        uuid.NewString(),
		TenantID:  o.tenantID,
		OrderID:   order.ID,
		Date:      o.now().UTC(),
		Method:    req.Method,
		Reference: req.Reference,
		Amount:    req.Amount,
	}
	paid, err := o.orders.MarkPaid(ctx, o.tenantID, order.ID, payment, "MOCK-SHIPPING-"+uuid.NewString())

	var ce *store.ConstraintError
	switch {
	case err == nil:
		slog.InfoContext(ctx, "order paid", "order_id", paid.ID, "payment_id", payment.ID)
		o.committed(ctx, paid, domain.StatusPending, domain.EventOrderPaid, "paid via "+req.Method)
		return PaymentResult{Order: paid, Payment: payment}, nil
	case errors.Is(err, store.ErrStatusChanged), errors.Is(err, store.ErrConflict):
		if !retry {
			return PaymentResult{}, apperr.Conflict("Order status changed concurrently", err)
		}
		current, loadErr := o.loadOrder(ctx, order.ID)
		if loadErr != nil {
			return PaymentResult{}, loadErr
		}
		return o.settle(ctx, current, req, false)
	case errors.As(err, &ce):
		return PaymentResult{}, apperr.ConstraintViolation(ce.Constraint, err)
	default:
		return PaymentResult{}, apperr.Internal("Failed to record payment", err)
	}
}

func (o *Orchestrator) replayPayment(ctx context.Context, order domain.Order, req PaymentRequest) (PaymentResult, error) {
	existing, err := o.orders.GetPayment(ctx, o.tenantID, order.ID)
	if err != nil {
		return PaymentResult{}, storeError("Failed to load payment", err)
	}
	if existing.Reference != req.Reference || existing.Method != req.Method || !existing.Amount.Equal(req.Amount) {
		return PaymentResult{}, apperr.Conflict("Order is already paid", nil)
	}
	slog.InfoContext(ctx, "payment replayed", "order_id", order.ID, "payment_id", existing.ID)
	return PaymentResult{Order: order, Payment: existing}, nil
}

// CancelOrder cancels a PENDING order of the caller. Cancelling a cancelled
// order returns it unchanged; paid orders cannot be cancelled.
func (o *Orchestrator) CancelOrder(ctx context.Context, p auth.Principal, orderID string) (_ domain.Order, err error) {
	ctx, span := o.tracer.Start(ctx, "CancelOrder", trace.WithAttributes(
		attribute.String("tenant.id", o.tenantID),
		attribute.String("order.id", orderID),
	))
	defer func() { endSpan(span, err) }()

	order, err := o.ownedOrder(ctx, p, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return o.cancel(ctx, order, true)
}

func (o *Orchestrator) cancel(ctx context.Context, order domain.Order, retry bool) (domain.Order, error) {
	switch order.Status {
	case domain.StatusCancelled:
		return order, nil
	case domain.StatusPaid:
		return domain.Order{}, apperr.BadRequest("Paid orders cannot be cancelled")
	}

	cancelled, err := o.orders.MarkCancelled(ctx, o.tenantID, order.ID)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "order cancelled", "order_id", cancelled.ID)
		o.committed(ctx, cancelled, domain.StatusPending, domain.EventOrderCancelled, "cancelled by user")
		return cancelled, nil
	case errors.Is(err, store.ErrStatusChanged) && retry:
		current, loadErr := o.loadOrder(ctx, order.ID)
		if loadErr != nil {
			return domain.Order{}, loadErr
		}
		return o.cancel(ctx, current, false)
	default:
		return domain.Order{}, storeError("Failed to cancel order", err)
	}
}

// ListOrders returns the caller's orders, newest first.
func (o *Orchestrator) ListOrders(ctx context.Context, p auth.Principal) ([]domain.Order, error) {
	orders, err := o.orders.ListOrders(ctx, o.tenantID, p.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to list orders", err)
	}
	return orders, nil
}

// GetOrder returns one of the caller's orders with its details.
func (o *Orchestrator) GetOrder(ctx context.Context, p auth.Principal, orderID string) (domain.Order, error) {
	return o.ownedOrder(ctx, p, orderID)
}

// History returns the committed transitions of one of the caller's orders.
func (o *Orchestrator) History(ctx context.Context, p auth.Principal, orderID string) ([]domain.Transition, error) {
	if _, err := o.ownedOrder(ctx, p, orderID); err != nil {
		return nil, err
	}
	if o.transitions == nil {
		return []domain.Transition{}, nil
	}
	history, err := o.transitions.History(ctx, o.tenantID, orderID)
	if err != nil {
		return nil, apperr.Internal("Failed to read order history", err)
	}
	return history, nil
}

func (o *Orchestrator) loadOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := o.orders.GetOrder(ctx, o.tenantID, orderID)
	if err != nil {
		return domain.Order{}, storeError("Failed to load order", err)
	}
	return order, nil
}

// ownedOrder hides other users' orders behind NotFound.
func (o *Orchestrator) ownedOrder(ctx context.Context, p auth.Principal, orderID string) (domain.Order, error) {
	order, err := o.loadOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if p.Role != auth.RoleAdmin && order.UserID != p.ID {
		return domain.Order{}, apperr.NotFound("Order not found")
	}
	return order, nil
}

// committed runs the post-commit sinks. Their failures are logged and never
// undo the write.
func (o *Orchestrator) committed(ctx context.Context, order domain.Order, from domain.OrderStatus, event domain.EventType, note string) {
	at := o.now()
	if o.transitions != nil {
		if err := o.transitions.Append(ctx, orderlog.NewTransition(ctx, order, from, note, at)); err != nil {
			slog.WarnContext(ctx, "order transition not logged", "order_id", order.ID, "error", err)
		}
	}
	if o.publisher != nil {
		if err := o.publisher.Publish(ctx, domain.NewEvent(event, order, at.UTC())); err != nil {
			slog.WarnContext(ctx, "order event not published", "order_id", order.ID, "event", event, "error", err)
		}
	}
}

func (o *Orchestrator) replayKey(ctx context.Context, p auth.Principal) string {
	key := interceptors.IdempotencyKey(ctx)
	if o.replays == nil || key == "" {
		return ""
	}
	return o.replays.GenerateKey("place", o.tenantID, p.ID, key)
}

func (o *Orchestrator) replay(ctx context.Context, key string) (domain.Order, bool) {
	if key == "" {
		return domain.Order{}, false
	}
	orderID, err := o.replays.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "replay cache unavailable", "error", err)
		return domain.Order{}, false
	}
	if orderID == "" {
		return domain.Order{}, false
	}
	order, err := o.orders.GetOrder(ctx, o.tenantID, orderID)
	if err != nil {
		return domain.Order{}, false
	}
	return order, true
}

func (o *Orchestrator) remember(ctx context.Context, key, orderID string) {
	if key == "" {
		return
	}
	if err := o.replays.Set(ctx, key, orderID, replayTTL); err != nil {
		slog.WarnContext(ctx, "replay key not stored", "order_id", orderID, "error", err)
	}
}

// storeError maps store sentinels to the client taxonomy.
func storeError(msg string, err error) error {
	var ce *store.ConstraintError
	switch {
	case errors.As(err, &ce):
		return apperr.ConstraintViolation(ce.Constraint, err)
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Order not found")
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict("Order already exists", err)
	default:
		return apperr.Internal(msg, err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
