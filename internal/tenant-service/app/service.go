// Package app manages tenant records. The admin who creates a tenant owns it.
package app

import (
	"context"
	"errors"
	"strings"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/store"
	"github.com/jcmexdev/marketplace/internal/tenant"
)

type Repository interface {
	tenant.Repository
	CreateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error)
	UpdateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error)
	DeleteTenant(ctx context.Context, tenantID string) (tenant.Tenant, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Details struct {
	Name        string
	Description string
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.BadRequest("name is required")
	}
	return nil
}

// Create registers a tenant owned by the calling admin.
func (s *Service) Create(ctx context.Context, owner auth.Principal, d Details) (tenant.Tenant, error) {
	if owner.Anonymous() {
		return tenant.Tenant{}, apperr.Internal("Internal Server Error", errors.New("tenant: create without principal"))
	}
	if err := d.validate(); err != nil {
		return tenant.Tenant{}, err
	}
	t, err := s.repo.CreateTenant(ctx, tenant.Tenant{
		OwnerID:     owner.ID,
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
	})
	if err != nil {
		return tenant.Tenant{}, tenantError(err, "Failed to create tenant")
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, tenantID string) (tenant.Tenant, error) {
	t, err := s.repo.GetTenant(ctx, tenantID)
	if err != nil {
		return tenant.Tenant{}, tenantError(err, "Failed to get tenant")
	}
	return t, nil
}

// Update replaces name and description. Ownership is checked by the caller's
// authorization scope.
func (s *Service) Update(ctx context.Context, tenantID string, d Details) (tenant.Tenant, error) {
	if err := d.validate(); err != nil {
		return tenant.Tenant{}, err
	}
	t, err := s.repo.UpdateTenant(ctx, tenant.Tenant{
		ID:          tenantID,
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
	})
	if err != nil {
		return tenant.Tenant{}, tenantError(err, "Failed to update tenant")
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, tenantID string) (tenant.Tenant, error) {
	t, err := s.repo.DeleteTenant(ctx, tenantID)
	if err != nil {
		return tenant.Tenant{}, tenantError(err, "Failed to delete tenant")
	}
	return t, nil
}

func tenantError(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Tenant not found")
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict("Tenant already exists", err)
	default:
		return apperr.Internal(msg, err)
	}
}
