package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/catalog"
	"github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/pkg/cache"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
	"github.com/jcmexdev/marketplace/internal/store"
	"github.com/jcmexdev/marketplace/internal/store/memory"
)

const tenantT = "tenant-t"

var userU = auth.Principal{ID: "user-u", TenantID: tenantT, Role: auth.RoleUser}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store  *memory.Store
	pricer *catalog.Fake
	orch   *Orchestrator
}

func newFixture(t *testing.T, quotes []catalog.ProductQuote, opts ...Option) *fixture {
	t.Helper()
	s := memory.New()
	pricer := catalog.NewFake(quotes...)
	return &fixture{
		store:  s,
		pricer: pricer,
		orch:   NewOrchestrator(tenantT, s, s, pricer, opts...),
	}
}

func (f *fixture) addToCart(t *testing.T, p auth.Principal, productID string, qty int) {
	t.Helper()
	_, err := f.store.CreateCartLine(context.Background(), domain.CartLine{
		TenantID: tenantT, UserID: p.ID, ProductID: productID, Quantity: qty,
	})
	require.NoError(t, err)
}

func TestOrderLifecycle_Scenario(t *testing.T) {
	f := newFixture(t, []catalog.ProductQuote{{ProductID: "P1", UnitPrice: price("10"), AvailableQuantity: 5}})
	f.addToCart(t, userU, "P1", 2)
	ctx := context.Background()

	order, err := f.orch.PlaceOrder(ctx, userU, "JNE")
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(price("20")))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Nil(t, order.ShippingStatus)
	assert.Nil(t, order.ShippingCode)
	require.Len(t, order.Details, 1)
	assert.Equal(t, "P1", order.Details[0].ProductID)
	assert.Equal(t, 2, order.Details[0].Quantity)
	assert.True(t, order.Details[0].UnitPrice.Equal(price("10")))

	paid, err := f.orch.PayOrder(ctx, order.ID, PaymentRequest{Method: "bank", Reference: "ref123", Amount: price("20")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Order.Status)
	require.NotNil(t, paid.Order.ShippingStatus)
	assert.Equal(t, domain.ShippingPending, *paid.Order.ShippingStatus)
	require.NotNil(t, paid.Order.ShippingCode)
	assert.Contains(t, *paid.Order.ShippingCode, "MOCK-SHIPPING-")
	assert.True(t, paid.Payment.Amount.Equal(price("20")))
	assert.Equal(t, order.ID, paid.Payment.OrderID)

	_, err = f.orch.CancelOrder(ctx, userU, order.ID)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	after, err := f.orch.GetOrder(ctx, userU, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, after.Status)
}

func TestPlaceOrder_OneDetailPerDistinctProduct(t *testing.T) {
	f := newFixture(t, []catalog.ProductQuote{
		{ProductID: "A", UnitPrice: price("1.25"), AvailableQuantity: 10},
		{ProductID: "B", UnitPrice: price("3"), AvailableQuantity: 10},
		{ProductID: "C", UnitPrice: price("0.10"), AvailableQuantity: 10},
	})
	f.addToCart(t, userU, "A", 4)
	f.addToCart(t, userU, "B", 1)
	f.addToCart(t, userU, "C", 7)

	order, err := f.orch.PlaceOrder(context.Background(), userU, "TIKI")
	require.NoError(t, err)

	require.Len(t, order.Details, 3)
	sum := decimal.Zero
	for _, d := range order.Details {
		sum = sum.Add(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))))
	}
	assert.True(t, order.TotalAmount.Equal(sum))
	assert.True(t, order.TotalAmount.Equal(price("8.70")))
	assert.Equal(t, 1, f.pricer.Calls(), "one batch call per placement")
}

func TestPlaceOrder_EmptyCartPersistsNothing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.orch.PlaceOrder(context.Background(), userU, "JNE")

	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, 0, f.store.CountOrders(tenantT))
	assert.Equal(t, 0, f.pricer.Calls())
}

func TestPlaceOrder_PricerFailureThenRecovery(t *testing.T) {
	f := newFixture(t, []catalog.ProductQuote{{ProductID: "P1", UnitPrice: price("10"), AvailableQuantity: 5}})
	f.addToCart(t, userU, "P1", 1)
	ctx := context.Background()

	f.pricer.Fail(catalog.ErrUnavailable)
	_, err := f.orch.PlaceOrder(ctx, userU, "JNE")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Failed to get products", apperr.As(err).Message)
	assert.Equal(t, 0, f.store.CountOrders(tenantT))

	f.pricer.Fail(nil)
	order, err := f.orch.PlaceOrder(ctx, userU, "JNE")
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.CountOrders(tenantT))

	orders, err := f.orch.ListOrders(ctx, userU)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestPlaceOrder_Rejections(t *testing.T) {
	quotes := []catalog.ProductQuote{{ProductID: "P1", UnitPrice: price("10"), AvailableQuantity: 2}}

	t.Run("unknown shipping provider", func(t *testing.T) {
		f := newFixture(t, quotes)
		f.addToCart(t, userU, "P1", 1)
		_, err := f.orch.PlaceOrder(context.Background(), userU, "DHL")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.Equal(t, 0, f.pricer.Calls())
	})

	t.Run("product deleted after being carted", func(t *testing.T) {
		f := newFixture(t, quotes)
		f.addToCart(t, userU, "P1", 1)
		f.addToCart(t, userU, "GONE", 1)
		_, err := f.orch.PlaceOrder(context.Background(), userU, "JNE")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.Equal(t, 0, f.store.CountOrders(tenantT))
	})

	t.Run("quantity above availability", func(t *testing.T) {
		f := newFixture(t, quotes)
		f.addToCart(t, userU, "P1", 3)
		_, err := f.orch.PlaceOrder(context.Background(), userU, "JNE")
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
		assert.Equal(t, 0, f.store.CountOrders(tenantT))
	})
}

func placed(t *testing.T, f *fixture) domain.Order {
	t.Helper()
	f.addToCart(t, userU, "P1", 2)
	order, err := f.orch.PlaceOrder(context.Background(), userU, "SICEPAT")
	require.NoError(t, err)
	return order
}

func scenarioQuotes() []catalog.ProductQuote {
	return []catalog.ProductQuote{{ProductID: "P1", UnitPrice: price("10"), AvailableQuantity: 5}}
}

func TestPayOrder_ReplayIsIdempotent(t *testing.T) {
	f := newFixture(t, scenarioQuotes())
	order := placed(t, f)
	req := PaymentRequest{Method: "bank", Reference: "ref123", Amount: price("20")}

	first, err := f.orch.PayOrder(context.Background(), order.ID, req)
	require.NoError(t, err)
	second, err := f.orch.PayOrder(context.Background(), order.ID, req)
	require.NoError(t, err)

	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Equal(t, domain.StatusPaid, second.Order.Status)
	assert.Equal(t, 1, f.store.CountPayments(tenantT))

	_, err = f.orch.PayOrder(context.Background(), order.ID, PaymentRequest{Method: "bank", Reference: "other", Amount: price("20")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 1, f.store.CountPayments(tenantT))
}

func TestPayOrder_ConcurrentCallsRecordOnePayment(t *testing.T) {
	f := newFixture(t, scenarioQuotes())
	order := placed(t, f)
	req := PaymentRequest{Method: "bank", Reference: "ref123", Amount: price("20")}

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orch.PayOrder(context.Background(), order.ID, req)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.store.CountPayments(tenantT))
}

func TestPayOrder_Validation(t *testing.T) {
	f := newFixture(t, scenarioQuotes())
	order := placed(t, f)
	ctx := context.Background()

	cases := []struct {
		name    string
		orderID string
		req     PaymentRequest
		want    apperr.Kind
	}{
		{"missing method", order.ID, PaymentRequest{Reference: "r", Amount: price("20")}, apperr.KindBadRequest},
		{"zero amount on a priced order", order.ID, PaymentRequest{Method: "bank", Reference: "r"}, apperr.KindBadRequest},
		{"negative amount", order.ID, PaymentRequest{Method: "bank", Reference: "r", Amount: price("-20")}, apperr.KindBadRequest},
		{"amount differs from total", order.ID, PaymentRequest{Method: "bank", Reference: "r", Amount: price("19.99")}, apperr.KindBadRequest},
		{"unknown order", "missing", PaymentRequest{Method: "bank", Reference: "r", Amount: price("20")}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orch.PayOrder(ctx, tc.orderID, tc.req)
			assert.Equal(t, tc.want, apperr.KindOf(err))
		})
	}
	assert.Equal(t, 0, f.store.CountPayments(tenantT))
}

func TestPayOrder_ZeroTotalOrder(t *testing.T) {
	f := newFixture(t, []catalog.ProductQuote{{ProductID: "FREE", UnitPrice: decimal.Zero, AvailableQuantity: 1}})
	f.addToCart(t, userU, "FREE", 1)
	ctx := context.Background()

	order, err := f.orch.PlaceOrder(ctx, userU, "JNE")
	require.NoError(t, err)
	require.True(t, order.TotalAmount.IsZero())

	_, err = f.orch.PayOrder(ctx, order.ID, PaymentRequest{Method: "voucher", Reference: "v1", Amount: price("0.01")})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err), "amount still has to match the total")

	res, err := f.orch.PayOrder(ctx, order.ID, PaymentRequest{Method: "voucher", Reference: "v1", Amount: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, res.Order.Status)
	assert.True(t, res.Payment.Amount.IsZero())
}

func TestPayOrder_UnknownOrderIsNotFound(t *testing.T) {
	f := newFixture(t, scenarioQuotes())
	placed(t, f)

	_, err := f.orch.PayOrder(context.Background(), "no-such-order", PaymentRequest{Method: "bank", Reference: "r", Amount: price("20")})

	e := apperr.As(err)
	assert.Equal(t, apperr.KindNotFound, e.Kind)
	assert.Equal(t, "Order not found", e.Message)
	assert.Empty(t, e.Constraint)
	assert.Equal(t, 0, f.store.CountPayments(tenantT))
}

type constraintOrders struct {
	*memory.Store
}

func (constraintOrders) MarkPaid(context.Context, string, string, domain.Payment, string) (domain.Order, error) {
	return domain.Order{}, &store.ConstraintError{Constraint: "payments_order_id_fkey", Err: errors.New("fk")}
}

func TestPayOrder_ConstraintViolationIsStructured(t *testing.T) {
	s := memory.New()
	pricer := catalog.NewFake(scenarioQuotes()...)
	orch := NewOrchestrator(tenantT, s, constraintOrders{s}, pricer)
	_, err := s.CreateCartLine(context.Background(), domain.CartLine{TenantID: tenantT, UserID: userU.ID, ProductID: "P1", Quantity: 2})
	require.NoError(t, err)
	order, err := orch.PlaceOrder(context.Background(), userU, "JNE")
	require.NoError(t, err)

	_, err = orch.PayOrder(context.Background(), order.ID, PaymentRequest{Method: "bank", Reference: "r", Amount: price("20")})

	e := apperr.As(err)
	assert.Equal(t, apperr.KindInternal, e.Kind)
	assert.Equal(t, "payments_order_id_fkey", e.Constraint)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t, scenarioQuotes())
	order := placed(t, f)
	ctx := context.Background()

	stranger := auth.Principal{ID: "someone", TenantID: tenantT, Role: auth.RoleUser}
	_, err := f.orch.CancelOrder(ctx, stranger, order.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	cancelled, err := f.orch.CancelOrder(ctx, userU, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.ShippingCode)
	assert.Nil(t, cancelled.ShippingStatus)

	again, err := f.orch.CancelOrder(ctx, userU, order.ID)
	require.NoError(t, err)
	assert.Equal(t, cancelled, again)

	_, err = f.orch.PayOrder(ctx, order.ID, PaymentRequest{Method: "bank", Reference: "r", Amount: price("20")})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = f.orch.CancelOrder(ctx, userU, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t, scenarioQuotes())
	order := placed(t, f)

	other := NewOrchestrator("tenant-other", f.store, f.store, f.pricer)
	intruder := auth.Principal{ID: userU.ID, TenantID: "tenant-other", Role: auth.RoleUser}

	_, err := other.GetOrder(context.Background(), intruder, order.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = other.PayOrder(context.Background(), order.ID, PaymentRequest{Method: "bank", Reference: "r", Amount: price("20")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = other.PlaceOrder(context.Background(), intruder, "JNE")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err), "cart of tenant-t is invisible")
}

type recordingLog struct {
	mu      sync.Mutex
	entries []domain.Transition
}

func (l *recordingLog) Append(_ context.Context, t domain.Transition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, t)
	return nil
}

func (l *recordingLog) History(_ context.Context, tenantID, orderID string) ([]domain.Transition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Transition
	for _, e := range l.entries {
		if e.TenantID == tenantID && e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func TestCommittedTransitionsAreLoggedAndPublished(t *testing.T) {
	log := &recordingLog{}
	pub := &recordingPublisher{err: errors.New("broker down")}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, scenarioQuotes(), WithTransitionLog(log), WithPublisher(pub), WithClock(func() time.Time { return fixed }))

	order := placed(t, f)
	_, err := f.orch.PayOrder(context.Background(), order.ID, PaymentRequest{Method: "bank", Reference: "r", Amount: price("20")})
	require.NoError(t, err, "publisher failure never fails the request")

	history, err := f.orch.History(context.Background(), userU, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusPending, history[0].To)
	assert.Equal(t, domain.StatusPending, history[1].From)
	assert.Equal(t, domain.StatusPaid, history[1].To)
	assert.Equal(t, fixed, history[1].At)

	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.EventOrderPlaced, pub.events[0].Type)
	assert.Equal(t, domain.EventOrderPaid, pub.events[1].Type)
	assert.True(t, order.OrderDate.Equal(fixed))
}

func TestPlaceOrder_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t, scenarioQuotes(), WithReplayCache(cache.NewMemoryCache("order-service")))
	f.addToCart(t, userU, "P1", 1)

	ctx := interceptors.WithRequestMetadata(context.Background(), "req-1", "key-1")
	first, err := f.orch.PlaceOrder(ctx, userU, "GOSEND")
	require.NoError(t, err)
	second, err := f.orch.PlaceOrder(ctx, userU, "GOSEND")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.CountOrders(tenantT))

	// Without a key the cart is not locked: each call places an order.
	_, err = f.orch.PlaceOrder(context.Background(), userU, "GOSEND")
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.CountOrders(tenantT))
}
