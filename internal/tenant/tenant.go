// Package tenant resolves tenant records and their owners.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/marketplace/internal/store"
)

type Tenant struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
}

// Resolver looks a tenant up by id.
type Resolver interface {
	Resolve(ctx context.Context, tenantID string) (Tenant, error)
}

// ErrUnavailable is returned when the tenant could not be resolved, whether
// the peer was unreachable or answered with a non-200 status.
var ErrUnavailable = errors.New("tenant: resolver unavailable")

// Repository reads tenant rows directly. A missing tenant is store.ErrNotFound.
type Repository interface {
	GetTenant(ctx context.Context, tenantID string) (Tenant, error)
}

var _ Resolver = (*StoreResolver)(nil)

// StoreResolver serves the tenant service itself, which owns the table.
type StoreResolver struct {
	repo Repository
}

func NewStoreResolver(repo Repository) *StoreResolver {
	return &StoreResolver{repo: repo}
}

func (r *StoreResolver) Resolve(ctx context.Context, tenantID string) (Tenant, error) {
	t, err := r.repo.GetTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return Tenant{}, fmt.Errorf("tenant: %q: %w", tenantID, err)
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return t, nil
}
