package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
)

const cartColumns = `id, tenant_id, user_id, product_id, quantity`

func scanCartLine(row interface{ Scan(...any) error }) (domain.CartLine, error) {
	var l domain.CartLine
	err := row.Scan(&l.ID, &l.TenantID, &l.UserID, &l.ProductID, &l.Quantity)
	return l, mapError(err)
}

func (q *Queries) ListCart(ctx context.Context, tenantID, userID string) ([]domain.CartLine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+cartColumns+` FROM carts
		WHERE  tenant_id = $1 AND user_id = $2
		ORDER  BY product_id`, tenantID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CartLine, error) {
		return scanCartLine(row)
	})
	return lines, mapError(err)
}

func (q *Queries) FindCartLineByProduct(ctx context.Context, tenantID, userID, productID string) (domain.CartLine, error) {
	return scanCartLine(q.db.QueryRow(ctx, `
		SELECT `+cartColumns+` FROM carts
		WHERE  tenant_id = $1 AND user_id = $2 AND product_id = $3`,
		tenantID, userID, productID))
}

func (q *Queries) CreateCartLine(ctx context.Context, l domain.CartLine) (domain.CartLine, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return scanCartLine(q.db.QueryRow(ctx, `
		INSERT INTO carts (`+cartColumns+`) VALUES ($1, $2, $3, $4, $5)
		RETURNING `+cartColumns,
		l.ID, l.TenantID, l.UserID, l.ProductID, l.Quantity))
}

func (q *Queries) UpdateCartQuantity(ctx context.Context, tenantID, userID, lineID string, quantity int) (domain.CartLine, error) {
	return scanCartLine(q.db.QueryRow(ctx, `
		UPDATE carts SET quantity = $4
		WHERE  tenant_id = $1 AND user_id = $2 AND id = $3
		RETURNING `+cartColumns,
		tenantID, userID, lineID, quantity))
}

func (q *Queries) DeleteCartLine(ctx context.Context, tenantID, userID, lineID string) (domain.CartLine, error) {
	return scanCartLine(q.db.QueryRow(ctx, `
		DELETE FROM carts
		WHERE  tenant_id = $1 AND user_id = $2 AND id = $3
		RETURNING `+cartColumns,
		tenantID, userID, lineID))
}
