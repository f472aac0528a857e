// Package app manages the caller's wishlists. Every call is scoped by the
// service tenant and the principal, so one user never sees another's lists.
package app

import (
	"context"
	"errors"
	"strings"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/catalog"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/store"
	"github.com/jcmexdev/marketplace/internal/wishlist-service/domain"
)

// Repository is scoped by (tenantID, userID). Wishlists and items the user
// does not own are store.ErrNotFound.
type Repository interface {
	ListWishlists(ctx context.Context, tenantID, userID string) ([]domain.Wishlist, error)
	GetWishlist(ctx context.Context, tenantID, userID, wishlistID string) (domain.Wishlist, error)
	CreateWishlist(ctx context.Context, w domain.Wishlist) (domain.Wishlist, error)
	RenameWishlist(ctx context.Context, tenantID, userID, wishlistID, name string) (domain.Wishlist, error)
	DeleteWishlist(ctx context.Context, tenantID, userID, wishlistID string) (domain.Wishlist, error)
	AddWishlistItem(ctx context.Context, userID string, item domain.Item) (domain.Item, error)
	RemoveWishlistItem(ctx context.Context, tenantID, userID, itemID string) (domain.Item, error)
}

type Service struct {
	tenantID string
	repo     Repository
	pricer   catalog.Pricer
}

func NewService(tenantID string, repo Repository, pricer catalog.Pricer) *Service {
	return &Service{tenantID: tenantID, repo: repo, pricer: pricer}
}

func (s *Service) List(ctx context.Context, p auth.Principal) ([]domain.Wishlist, error) {
	lists, err := s.repo.ListWishlists(ctx, s.tenantID, p.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to get wishlists", err)
	}
	return lists, nil
}

// Get returns one of the caller's wishlists with its items.
func (s *Service) Get(ctx context.Context, p auth.Principal, wishlistID string) (domain.Wishlist, error) {
	if wishlistID == "" {
		return domain.Wishlist{}, apperr.BadRequest("id is required")
	}
	w, err := s.repo.GetWishlist(ctx, s.tenantID, p.ID, wishlistID)
	return w, wishlistError(err, "Failed to get wishlist")
}

func (s *Service) Create(ctx context.Context, p auth.Principal, name string) (domain.Wishlist, error) {
	name, err := validName(name)
	if err != nil {
		return domain.Wishlist{}, err
	}
	w, err := s.repo.CreateWishlist(ctx, domain.Wishlist{
		TenantID: s.tenantID,
		UserID:   p.ID,
		Name:     name,
	})
	if err != nil {
		return domain.Wishlist{}, apperr.Internal("Failed to create wishlist", err)
	}
	return w, nil
}

func (s *Service) Rename(ctx context.Context, p auth.Principal, wishlistID, name string) (domain.Wishlist, error) {
	if wishlistID == "" {
		return domain.Wishlist{}, apperr.BadRequest("id is required")
	}
	name, err := validName(name)
	if err != nil {
		return domain.Wishlist{}, err
	}
	w, err := s.repo.RenameWishlist(ctx, s.tenantID, p.ID, wishlistID, name)
	return w, wishlistError(err, "Failed to update wishlist")
}

// Delete removes the wishlist and every item on it.
func (s *Service) Delete(ctx context.Context, p auth.Principal, wishlistID string) (domain.Wishlist, error) {
	if wishlistID == "" {
		return domain.Wishlist{}, apperr.BadRequest("id is required")
	}
	w, err := s.repo.DeleteWishlist(ctx, s.tenantID, p.ID, wishlistID)
	return w, wishlistError(err, "Failed to delete wishlist")
}

// AddProduct puts productID on the wishlist once. The product must exist in
// the catalog of the service tenant.
func (s *Service) AddProduct(ctx context.Context, p auth.Principal, wishlistID, productID string) (domain.Item, error) {
	switch {
	case wishlistID == "":
		return domain.Item{}, apperr.BadRequest("wishlist_id is required")
	case productID == "":
		return domain.Item{}, apperr.BadRequest("product_id is required")
	}

	quotes, err := s.pricer.Quote(ctx, []string{productID})
	if err != nil {
		return domain.Item{}, apperr.Internal("Failed to get products", err)
	}
	if _, ok := catalog.Index(quotes)[productID]; !ok {
		return domain.Item{}, apperr.NotFound("Product not found")
	}

	item, err := s.repo.AddWishlistItem(ctx, p.ID, domain.Item{
		TenantID:   s.tenantID,
		WishlistID: wishlistID,
		ProductID:  productID,
	})
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, store.ErrNotFound):
		return domain.Item{}, apperr.NotFound("Wishlist not found")
	case errors.Is(err, store.ErrConflict):
		return domain.Item{}, apperr.Conflict("Product already in wishlist", err)
	default:
		return domain.Item{}, apperr.Internal("Failed to add product to wishlist", err)
	}
}

// RemoveProduct deletes one item from a wishlist the caller owns.
func (s *Service) RemoveProduct(ctx context.Context, p auth.Principal, itemID string) (domain.Item, error) {
	if itemID == "" {
		return domain.Item{}, apperr.BadRequest("id is required")
	}
	item, err := s.repo.RemoveWishlistItem(ctx, s.tenantID, p.ID, itemID)
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, store.ErrNotFound):
		return domain.Item{}, apperr.NotFound("Wishlist detail not found")
	default:
		return domain.Item{}, apperr.Internal("Failed to remove product from wishlist", err)
	}
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.BadRequest("name is required")
	}
	return name, nil
}

func wishlistError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Wishlist not found")
	default:
		return apperr.Internal(msg, err)
	}
}
