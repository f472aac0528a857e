package app

import (
	"context"
	"errors"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/catalog"
	"github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/order-service/ports"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/store"
)

// CartService manages the caller's cart lines. Every call is scoped by the
// service tenant and the principal.
type CartService struct {
	tenantID string
	carts    ports.CartRepository
	pricer   catalog.Pricer
}

func NewCartService(tenantID string, carts ports.CartRepository, pricer catalog.Pricer) *CartService {
	return &CartService{tenantID: tenantID, carts: carts, pricer: pricer}
}

func (s *CartService) Items(ctx context.Context, p auth.Principal) ([]domain.CartLine, error) {
	lines, err := s.carts.ListCart(ctx, s.tenantID, p.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to read cart", err)
	}
	return lines, nil
}

// Add puts quantity of productID in the cart, merging with an existing line
// for the same product.
func (s *CartService) Add(ctx context.Context, p auth.Principal, productID string, quantity int) (domain.CartLine, error) {
	if productID == "" {
		return domain.CartLine{}, apperr.BadRequest("product_id is required")
	}
	if quantity <= 0 {
		return domain.CartLine{}, apperr.BadRequest("quantity must be a positive integer")
	}

	quotes, err := s.pricer.Quote(ctx, []string{productID})
	if err != nil {
		return domain.CartLine{}, apperr.Internal("Failed to get products", err)
	}
	if _, ok := catalog.Index(quotes)[productID]; !ok {
		return domain.CartLine{}, apperr.NotFound("Product not found")
	}

	line, err := s.merge(ctx, p, productID, quantity)
	if errors.Is(err, store.ErrConflict) {
		// Lost a race with a concurrent add of the same product.
		line, err = s.merge(ctx, p, productID, quantity)
	}
	if err != nil {
		return domain.CartLine{}, apperr.Internal("Failed to add item to cart", err)
	}
	return line, nil
}

func (s *CartService) merge(ctx context.Context, p auth.Principal, productID string, quantity int) (domain.CartLine, error) {
	existing, err := s.carts.FindCartLineByProduct(ctx, s.tenantID, p.ID, productID)
	switch {
	case err == nil:
		return s.carts.UpdateCartQuantity(ctx, s.tenantID, p.ID, existing.ID, existing.Quantity+quantity)
	case errors.Is(err, store.ErrNotFound):
		return s.carts.CreateCartLine(ctx, domain.CartLine{
			TenantID:  s.tenantID,
			UserID:    p.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
	default:
		return domain.CartLine{}, err
	}
}

// Edit sets the quantity of one of the caller's lines.
func (s *CartService) Edit(ctx context.Context, p auth.Principal, lineID string, quantity int) (domain.CartLine, error) {
	if lineID == "" {
		return domain.CartLine{}, apperr.BadRequest("cart_id is required")
	}
	if quantity <= 0 {
		return domain.CartLine{}, apperr.BadRequest("quantity must be a positive integer")
	}
	line, err := s.carts.UpdateCartQuantity(ctx, s.tenantID, p.ID, lineID, quantity)
	return line, cartError(err)
}

// Delete removes one of the caller's lines.
func (s *CartService) Delete(ctx context.Context, p auth.Principal, lineID string) (domain.CartLine, error) {
	if lineID == "" {
		return domain.CartLine{}, apperr.BadRequest("cart_id is required")
	}
	line, err := s.carts.DeleteCartLine(ctx, s.tenantID, p.ID, lineID)
	return line, cartError(err)
}

func cartError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Cart item not found")
	default:
		return apperr.Internal("Failed to update cart", err)
	}
}
