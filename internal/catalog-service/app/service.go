// Package app serves the product catalog of one tenant and answers batch
// price quotes for the order service.
package app

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/marketplace/internal/catalog"
	"github.com/jcmexdev/marketplace/internal/catalog-service/domain"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/store"
)

type Repository interface {
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, tenantID, productID string) (domain.Product, error)
	ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, tenantID, categoryID string) ([]domain.Product, error)
	GetProductsByIDs(ctx context.Context, tenantID string, productIDs []string) ([]domain.Product, error)
}

var _ catalog.Pricer = (*Service)(nil)

type Service struct {
	tenantID string
	repo     Repository
}

func NewService(tenantID string, repo Repository) *Service {
	return &Service{tenantID: tenantID, repo: repo}
}

// Quote implements catalog.Pricer over the local tenant's products. Unknown
// ids are left out.
func (s *Service) Quote(ctx context.Context, productIDs []string) ([]catalog.ProductQuote, error) {
	products, err := s.repo.GetProductsByIDs(ctx, s.tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	quotes := make([]catalog.ProductQuote, 0, len(products))
	for _, p := range products {
		quotes = append(quotes, p.Quote())
	}
	return quotes, nil
}

// ProductsByIDs backs the public batch lookup.
func (s *Service) ProductsByIDs(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	if len(productIDs) == 0 {
		return nil, apperr.BadRequest("productIds is required")
	}
	products, err := s.repo.GetProductsByIDs(ctx, s.tenantID, productIDs)
	if err != nil {
		return nil, apperr.Internal("Failed to get products", err)
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, productID string) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, s.tenantID, productID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Product{}, apperr.NotFound("Product not found")
	}
	if err != nil {
		return domain.Product{}, apperr.Internal("Failed to get product", err)
	}
	return p, nil
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, s.tenantID)
	if err != nil {
		return nil, apperr.Internal("Failed to get products", err)
	}
	return products, nil
}

func (s *Service) ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	products, err := s.repo.ListProductsByCategory(ctx, s.tenantID, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Category not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to get products", err)
	}
	return products, nil
}

type NewProduct struct {
	Name              string
	Description       string
	Price             decimal.Decimal
	QuantityAvailable int
	CategoryID        *string
}

func (in NewProduct) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.BadRequest("name is required")
	case in.Price.IsNegative():
		return apperr.BadRequest("price must not be negative")
	case in.QuantityAvailable < 0:
		return apperr.BadRequest("quantity_available must not be negative")
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}
	p, err := s.repo.CreateProduct(ctx, domain.Product{
		TenantID:          s.tenantID,
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Price:             in.Price,
		QuantityAvailable: in.QuantityAvailable,
		CategoryID:        in.CategoryID,
	})
	var ce *store.ConstraintError
	if errors.As(err, &ce) {
		return domain.Product{}, apperr.NotFound("Category not found")
	}
	if err != nil {
		return domain.Product{}, apperr.Internal("Failed to create product", err)
	}
	return p, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, apperr.BadRequest("name is required")
	}
	c, err := s.repo.CreateCategory(ctx, domain.Category{TenantID: s.tenantID, Name: name})
	if errors.Is(err, store.ErrConflict) {
		return domain.Category{}, apperr.Conflict("Category already exists", err)
	}
	if err != nil {
		return domain.Category{}, apperr.Internal("Failed to create category", err)
	}
	return c, nil
}
