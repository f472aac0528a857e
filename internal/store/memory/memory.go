// Package memory is a process local implementation of every repository the
// services use. It backs development runs without DATABASE_URL and tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/marketplace/internal/auth"
	catalogdomain "github.com/jcmexdev/marketplace/internal/catalog-service/domain"
	identitydomain "github.com/jcmexdev/marketplace/internal/identity-service/domain"
	orderdomain "github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/store"
	"github.com/jcmexdev/marketplace/internal/tenant"
	wishlistdomain "github.com/jcmexdev/marketplace/internal/wishlist-service/domain"
)

// Store keeps every table in maps guarded by one lock, so each method is
// atomic.
type Store struct {
	mu sync.RWMutex

	accounts   map[string]identitydomain.Account
	tenants    map[string]tenant.Tenant
	categories map[string]catalogdomain.Category
	products   map[string]catalogdomain.Product
	carts      map[string]orderdomain.CartLine
	orders     map[string]orderdomain.Order
	payments   map[string]orderdomain.Payment // by order id
	wishlists  map[string]wishlistdomain.Wishlist
	wishItems  map[string]wishlistdomain.Item

	now func() time.Time
}

func New() *Store {
	return &Store{
		accounts:   make(map[string]identitydomain.Account),
		tenants:    make(map[string]tenant.Tenant),
		categories: make(map[string]catalogdomain.Category),
		products:   make(map[string]catalogdomain.Product),
		carts:      make(map[string]orderdomain.CartLine),
		orders:     make(map[string]orderdomain.Order),
		payments:   make(map[string]orderdomain.Payment),
		wishlists:  make(map[string]wishlistdomain.Wishlist),
		wishItems:  make(map[string]wishlistdomain.Item),
		now:        time.Now,
	}
}

func newID() string { return uuid.NewString() }

// Accounts

func (s *Store) CreateAccount(_ context.Context, a identitydomain.Account) (identitydomain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.TenantID != a.TenantID {
			continue
		}
		if strings.EqualFold(existing.Username, a.Username) || strings.EqualFold(existing.Email, a.Email) {
			return identitydomain.Account{}, store.ErrConflict
		}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) FindAccountByUsername(_ context.Context, tenantID, username string) (identitydomain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.TenantID == tenantID && strings.EqualFold(a.Username, username) {
			return a, nil
		}
	}
	return identitydomain.Account{}, store.ErrNotFound
}

func (s *Store) FindUser(_ context.Context, tenantID, userID string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[userID]
	if !ok || a.TenantID != tenantID {
		return auth.User{}, store.ErrNotFound
	}
	return a.User, nil
}

// Tenants

func (s *Store) CreateTenant(_ context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = newID()
	}
	if _, ok := s.tenants[t.ID]; ok {
		return tenant.Tenant{}, store.ErrConflict
	}
	s.tenants[t.ID] = t
	return t, nil
}

func (s *Store) GetTenant(_ context.Context, tenantID string) (tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[tenantID]
	if !ok {
		return tenant.Tenant{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) UpdateTenant(_ context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tenants[t.ID]
	if !ok {
		return tenant.Tenant{}, store.ErrNotFound
	}
	existing.Name = t.Name
	existing.Description = t.Description
	s.tenants[t.ID] = existing
	return existing, nil
}

func (s *Store) DeleteTenant(_ context.Context, tenantID string) (tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[tenantID]
	if !ok {
		return tenant.Tenant{}, store.ErrNotFound
	}
	delete(s.tenants, tenantID)
	return t, nil
}

// Catalog

func (s *Store) CreateCategory(_ context.Context, c catalogdomain.Category) (catalogdomain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.TenantID == c.TenantID && strings.EqualFold(existing.Name, c.Name) {
			return catalogdomain.Category{}, store.ErrConflict
		}
	}
	if c.ID == "" {
		c.ID = newID()
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) CreateProduct(_ context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; !ok || c.TenantID != p.TenantID {
			return catalogdomain.Product{}, &store.ConstraintError{Constraint: "products_category_id_fkey", Err: store.ErrNotFound}
		}
	}
	if p.ID == "" {
		p.ID = newID()
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, tenantID, productID string) (catalogdomain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok || p.TenantID != tenantID {
		return catalogdomain.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context, tenantID string) ([]catalogdomain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.productsWhere(func(p catalogdomain.Product) bool { return p.TenantID == tenantID }), nil
}

func (s *Store) ListProductsByCategory(_ context.Context, tenantID, categoryID string) ([]catalogdomain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.categories[categoryID]; !ok || c.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return s.productsWhere(func(p catalogdomain.Product) bool {
		return p.TenantID == tenantID && p.CategoryID != nil && *p.CategoryID == categoryID
	}), nil
}

func (s *Store) GetProductsByIDs(_ context.Context, tenantID string, productIDs []string) ([]catalogdomain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.productsWhere(func(p catalogdomain.Product) bool {
		return p.TenantID == tenantID && slices.Contains(productIDs, p.ID)
	}), nil
}

func (s *Store) productsWhere(keep func(catalogdomain.Product) bool) []catalogdomain.Product {
	out := make([]catalogdomain.Product, 0)
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Carts

func (s *Store) ListCart(_ context.Context, tenantID, userID string) ([]orderdomain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]orderdomain.CartLine, 0)
	for _, l := range s.carts {
		if l.TenantID == tenantID && l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (s *Store) FindCartLineByProduct(_ context.Context, tenantID, userID, productID string) (orderdomain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.carts {
		if l.TenantID == tenantID && l.UserID == userID && l.ProductID == productID {
			return l, nil
		}
	}
	return orderdomain.CartLine{}, store.ErrNotFound
}

func (s *Store) CreateCartLine(_ context.Context, line orderdomain.CartLine) (orderdomain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.carts {
		if l.TenantID == line.TenantID && l.UserID == line.UserID && l.ProductID == line.ProductID {
			return orderdomain.CartLine{}, store.ErrConflict
		}
	}
	if line.ID == "" {
		line.ID = newID()
	}
	s.carts[line.ID] = line
	return line, nil
}

func (s *Store) UpdateCartQuantity(_ context.Context, tenantID, userID, lineID string, quantity int) (orderdomain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.carts[lineID]
	if !ok || l.TenantID != tenantID || l.UserID != userID {
		return orderdomain.CartLine{}, store.ErrNotFound
	}
	l.Quantity = quantity
	s.carts[lineID] = l
	return l, nil
}

func (s *Store) DeleteCartLine(_ context.Context, tenantID, userID, lineID string) (orderdomain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.carts[lineID]
	if !ok || l.TenantID != tenantID || l.UserID != userID {
		return orderdomain.CartLine{}, store.ErrNotFound
	}
	delete(s.carts, lineID)
	return l, nil
}

// Orders

func (s *Store) CreateOrder(_ context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = newID()
	}
	if _, ok := s.orders[o.ID]; ok {
		return orderdomain.Order{}, store.ErrConflict
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = s.now().UTC()
	}
	details := make([]orderdomain.OrderDetail, len(o.Details))
	for i, d := range o.Details {
		if d.ID == "" {
			d.ID = newID()
		}
		d.OrderID = o.ID
		d.TenantID = o.TenantID
		details[i] = d
	}
	o.Details = details
	s.orders[o.ID] = o
	return cloneOrder(o), nil
}

func (s *Store) GetOrder(_ context.Context, tenantID, orderID string) (orderdomain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok || o.TenantID != tenantID {
		return orderdomain.Order{}, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *Store) ListOrders(_ context.Context, tenantID, userID string) ([]orderdomain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]orderdomain.Order, 0)
	for _, o := range s.orders {
		if o.TenantID == tenantID && o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (s *Store) GetPayment(_ context.Context, tenantID, orderID string) (orderdomain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[orderID]
	if !ok || p.TenantID != tenantID {
		return orderdomain.Payment{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) MarkPaid(_ context.Context, tenantID, orderID string, p orderdomain.Payment, shippingCode string) (orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.TenantID != tenantID {
		return orderdomain.Order{}, &store.ConstraintError{Constraint: "payments_order_id_fkey", Err: store.ErrNotFound}
	}
	if o.Status != orderdomain.StatusPending {
		return orderdomain.Order{}, store.ErrStatusChanged
	}
	if _, ok := s.payments[orderID]; ok {
		return orderdomain.Order{}, store.ErrConflict
	}

	if p.ID == "" {
		p.ID = newID()
	}
	if p.Date.IsZero() {
		p.Date = s.now().UTC()
	}
	p.OrderID = orderID
	p.TenantID = tenantID
	s.payments[orderID] = p

	shipping := orderdomain.ShippingPending
	o.Status = orderdomain.StatusPaid
	o.ShippingCode = &shippingCode
	o.ShippingStatus = &shipping
	s.orders[orderID] = o
	return cloneOrder(o), nil
}

func (s *Store) MarkCancelled(_ context.Context, tenantID, orderID string) (orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.TenantID != tenantID {
		return orderdomain.Order{}, store.ErrNotFound
	}
	if o.Status != orderdomain.StatusPending {
		return orderdomain.Order{}, store.ErrStatusChanged
	}
	o.Status = orderdomain.StatusCancelled
	o.ShippingCode = nil
	o.ShippingStatus = nil
	s.orders[orderID] = o
	return cloneOrder(o), nil
}

// Wishlists

func (s *Store) ListWishlists(_ context.Context, tenantID, userID string) ([]wishlistdomain.Wishlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]wishlistdomain.Wishlist, 0)
	for _, w := range s.wishlists {
		if w.TenantID == tenantID && w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetWishlist(_ context.Context, tenantID, userID, wishlistID string) (wishlistdomain.Wishlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.ownedWishlist(tenantID, userID, wishlistID)
	if !ok {
		return wishlistdomain.Wishlist{}, store.ErrNotFound
	}
	w.Items = make([]wishlistdomain.Item, 0)
	for _, it := range s.wishItems {
		if it.WishlistID == w.ID {
			w.Items = append(w.Items, it)
		}
	}
	sort.Slice(w.Items, func(i, j int) bool { return w.Items[i].ProductID < w.Items[j].ProductID })
	return w, nil
}

func (s *Store) CreateWishlist(_ context.Context, w wishlistdomain.Wishlist) (wishlistdomain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.ID == "" {
		w.ID = newID()
	}
	if _, ok := s.wishlists[w.ID]; ok {
		return wishlistdomain.Wishlist{}, store.ErrConflict
	}
	w.Items = nil
	s.wishlists[w.ID] = w
	return w, nil
}

func (s *Store) RenameWishlist(_ context.Context, tenantID, userID, wishlistID, name string) (wishlistdomain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.ownedWishlist(tenantID, userID, wishlistID)
	if !ok {
		return wishlistdomain.Wishlist{}, store.ErrNotFound
	}
	w.Name = name
	s.wishlists[w.ID] = w
	return w, nil
}

func (s *Store) DeleteWishlist(_ context.Context, tenantID, userID, wishlistID string) (wishlistdomain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.ownedWishlist(tenantID, userID, wishlistID)
	if !ok {
		return wishlistdomain.Wishlist{}, store.ErrNotFound
	}
	delete(s.wishlists, w.ID)
	for id, it := range s.wishItems {
		if it.WishlistID == w.ID {
			delete(s.wishItems, id)
		}
	}
	return w, nil
}

func (s *Store) AddWishlistItem(_ context.Context, userID string, item wishlistdomain.Item) (wishlistdomain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ownedWishlist(item.TenantID, userID, item.WishlistID); !ok {
		return wishlistdomain.Item{}, store.ErrNotFound
	}
	for _, it := range s.wishItems {
		if it.WishlistID == item.WishlistID && it.ProductID == item.ProductID {
			return wishlistdomain.Item{}, store.ErrConflict
		}
	}
	if item.ID == "" {
		item.ID = newID()
	}
	s.wishItems[item.ID] = item
	return item, nil
}

func (s *Store) RemoveWishlistItem(_ context.Context, tenantID, userID, itemID string) (wishlistdomain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.wishItems[itemID]
	if !ok || it.TenantID != tenantID {
		return wishlistdomain.Item{}, store.ErrNotFound
	}
	if _, ok := s.ownedWishlist(tenantID, userID, it.WishlistID); !ok {
		return wishlistdomain.Item{}, store.ErrNotFound
	}
	delete(s.wishItems, itemID)
	return it, nil
}

func (s *Store) ownedWishlist(tenantID, userID, wishlistID string) (wishlistdomain.Wishlist, bool) {
	w, ok := s.wishlists[wishlistID]
	if !ok || w.TenantID != tenantID || w.UserID != userID {
		return wishlistdomain.Wishlist{}, false
	}
	return w, true
}

// CountOrders reports how many orders exist for tenantID.
func (s *Store) CountOrders(tenantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, o := range s.orders {
		if o.TenantID == tenantID {
			n++
		}
	}
	return n
}

// CountPayments reports how many payments exist for tenantID.
func (s *Store) CountPayments(tenantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.payments {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n
}

func cloneOrder(o orderdomain.Order) orderdomain.Order {
	o.Details = slices.Clone(o.Details)
	if o.ShippingCode != nil {
		code := *o.ShippingCode
		o.ShippingCode = &code
	}
	if o.ShippingStatus != nil {
		st := *o.ShippingStatus
		o.ShippingStatus = &st
	}
	return o
}
