package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jcmexdev/marketplace/internal/tenant"
)

func scanTenant(row interface{ Scan(...any) error }) (tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description)
	return t, mapError(err)
}

func (q *Queries) CreateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return scanTenant(q.db.QueryRow(ctx, `
		INSERT INTO tenants (id, owner_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, name, description`,
		t.ID, t.OwnerID, t.Name, t.Description))
}

func (q *Queries) GetTenant(ctx context.Context, tenantID string) (tenant.Tenant, error) {
	return scanTenant(q.db.QueryRow(ctx, `
		SELECT id, owner_id, name, description FROM tenants WHERE id = $1`, tenantID))
}

func (q *Queries) UpdateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	return scanTenant(q.db.QueryRow(ctx, `
		UPDATE tenants SET name = $2, description = $3
		WHERE  id = $1
		RETURNING id, owner_id, name, description`,
		t.ID, t.Name, t.Description))
}

func (q *Queries) DeleteTenant(ctx context.Context, tenantID string) (tenant.Tenant, error) {
	return scanTenant(q.db.QueryRow(ctx, `
		DELETE FROM tenants WHERE id = $1
		RETURNING id, owner_id, name, description`, tenantID))
}
