package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/marketplace/internal/auth"
	catalogdomain "github.com/jcmexdev/marketplace/internal/catalog-service/domain"
	identitydomain "github.com/jcmexdev/marketplace/internal/identity-service/domain"
	orderdomain "github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/store"
	wishlistdomain "github.com/jcmexdev/marketplace/internal/wishlist-service/domain"
)

func TestAccounts_UniquePerTenant(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := identitydomain.Account{User: auth.User{TenantID: "t1", Username: "alice", Email: "a@x", Role: auth.RoleUser}}

	created, err := s.CreateAccount(ctx, a)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = s.CreateAccount(ctx, a)
	assert.ErrorIs(t, err, store.ErrConflict)

	a.TenantID = "t2"
	_, err = s.CreateAccount(ctx, a)
	assert.NoError(t, err)

	_, err = s.FindUser(ctx, "t2", created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCart_TenantAndUserScoped(t *testing.T) {
	s := New()
	ctx := context.Background()

	line, err := s.CreateCartLine(ctx, orderdomain.CartLine{TenantID: "t1", UserID: "u1", ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	_, err = s.CreateCartLine(ctx, orderdomain.CartLine{TenantID: "t1", UserID: "u1", ProductID: "p1", Quantity: 3})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.UpdateCartQuantity(ctx, "t1", "u2", line.ID, 5)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.DeleteCartLine(ctx, "t2", "u1", line.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	lines, err := s.ListCart(ctx, "t2", "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestOrders_CompareAndSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	o, err := s.CreateOrder(ctx, orderdomain.Order{
		TenantID: "t1", UserID: "u1", Status: orderdomain.StatusPending,
		TotalAmount: decimal.NewFromInt(4),
		Details:     []orderdomain.OrderDetail{{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, o.ID, o.Details[0].OrderID)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.MarkPaid(ctx, "t1", o.ID, orderdomain.Payment{Amount: decimal.NewFromInt(4)}, "code"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, s.CountPayments("t1"))

	_, err = s.MarkCancelled(ctx, "t1", o.ID)
	assert.ErrorIs(t, err, store.ErrStatusChanged)

	_, err = s.MarkPaid(ctx, "t1", "missing", orderdomain.Payment{}, "code")
	var ce *store.ConstraintError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "payments_order_id_fkey", ce.Constraint)
}

func TestProductsByCategory(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ListProductsByCategory(ctx, "t1", "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	c, err := s.CreateCategory(ctx, catalogdomain.Category{TenantID: "t1", Name: "Books"})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, catalogdomain.Product{TenantID: "t1", Name: "Go", Price: decimal.NewFromInt(30), CategoryID: &c.ID})
	require.NoError(t, err)

	products, err := s.ListProductsByCategory(ctx, "t1", c.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = s.ListProductsByCategory(ctx, "t2", c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWishlists_OwnedByUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	w, err := s.CreateWishlist(ctx, wishlistdomain.Wishlist{TenantID: "t1", UserID: "u1", Name: "gifts"})
	require.NoError(t, err)

	item, err := s.AddWishlistItem(ctx, "u1", wishlistdomain.Item{TenantID: "t1", WishlistID: w.ID, ProductID: "p1"})
	require.NoError(t, err)

	_, err = s.AddWishlistItem(ctx, "u1", wishlistdomain.Item{TenantID: "t1", WishlistID: w.ID, ProductID: "p1"})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.AddWishlistItem(ctx, "u2", wishlistdomain.Item{TenantID: "t1", WishlistID: w.ID, ProductID: "p2"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RemoveWishlistItem(ctx, "t1", "u2", item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetWishlist(ctx, "t2", "u1", w.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetWishlist(ctx, "t1", "u1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, []wishlistdomain.Item{item}, got.Items)

	_, err = s.DeleteWishlist(ctx, "t1", "u1", w.ID)
	require.NoError(t, err)
	_, err = s.RemoveWishlistItem(ctx, "t1", "u1", item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "items go with their wishlist")
}
