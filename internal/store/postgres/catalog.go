package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/marketplace/internal/catalog-service/domain"
	"github.com/jcmexdev/marketplace/internal/store"
)

const productColumns = `id, tenant_id, name, description, price, quantity_available, category_id`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Price, &p.QuantityAvailable, &p.CategoryID)
	return p, mapError(err)
}

func (q *Queries) collectProducts(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return products, nil
}

func (q *Queries) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := q.db.QueryRow(ctx, `
		INSERT INTO categories (id, tenant_id, name) VALUES ($1, $2, $3)
		RETURNING id, tenant_id, name`,
		c.ID, c.TenantID, c.Name).Scan(&c.ID, &c.TenantID, &c.Name)
	return c, mapError(err)
}

func (q *Queries) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return scanProduct(q.db.QueryRow(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		p.ID, p.TenantID, p.Name, p.Description, p.Price, p.QuantityAvailable, p.CategoryID))
}

func (q *Queries) GetProduct(ctx context.Context, tenantID, productID string) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`,
		tenantID, productID))
}

func (q *Queries) ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error) {
	return q.collectProducts(ctx, `
		SELECT `+productColumns+` FROM products WHERE tenant_id = $1 ORDER BY name`, tenantID)
}

// ListProductsByCategory is store.ErrNotFound when the category itself does
// not exist in the tenant.
func (q *Queries) ListProductsByCategory(ctx context.Context, tenantID, categoryID string) ([]domain.Product, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE tenant_id = $1 AND id = $2)`,
		tenantID, categoryID).Scan(&exists)
	if err != nil {
		return nil, mapError(err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return q.collectProducts(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE  tenant_id = $1 AND category_id = $2
		ORDER  BY name`, tenantID, categoryID)
}

func (q *Queries) GetProductsByIDs(ctx context.Context, tenantID string, productIDs []string) ([]domain.Product, error) {
	return q.collectProducts(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE  tenant_id = $1 AND id = ANY($2)
		ORDER  BY name`, tenantID, productIDs)
}
