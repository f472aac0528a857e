package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/store"
)

const orderColumns = `id, tenant_id, user_id, order_date, total_amount, order_status,
	shipping_provider, shipping_code, shipping_status`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var (
		o              domain.Order
		shippingStatus *string
	)
	err := row.Scan(&o.ID, &o.TenantID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.Status,
		&o.ShippingProvider, &o.ShippingCode, &shippingStatus)
	if err != nil {
		return domain.Order{}, mapError(err)
	}
	if shippingStatus != nil {
		st := domain.ShippingStatus(*shippingStatus)
		o.ShippingStatus = &st
	}
	return o, nil
}

func (q *Queries) insertOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		INSERT INTO orders (id, tenant_id, user_id, order_date, total_amount, order_status, shipping_provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		o.ID, o.TenantID, o.UserID, o.OrderDate, o.TotalAmount, o.Status, o.ShippingProvider))
}

func (q *Queries) insertDetail(ctx context.Context, d domain.OrderDetail) (domain.OrderDetail, error) {
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_details (id, tenant_id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, tenant_id, order_id, product_id, quantity, unit_price`,
		d.ID, d.TenantID, d.OrderID, d.ProductID, d.Quantity, d.UnitPrice,
	).Scan(&d.ID, &d.TenantID, &d.OrderID, &d.ProductID, &d.Quantity, &d.UnitPrice)
	return d, mapError(err)
}

func (q *Queries) orderDetails(ctx context.Context, tenantID, orderID string) ([]domain.OrderDetail, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, tenant_id, order_id, product_id, quantity, unit_price
		FROM   order_details
		WHERE  tenant_id = $1 AND order_id = $2
		ORDER  BY product_id`, tenantID, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	details, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderDetail, error) {
		var d domain.OrderDetail
		err := row.Scan(&d.ID, &d.TenantID, &d.OrderID, &d.ProductID, &d.Quantity, &d.UnitPrice)
		return d, err
	})
	return details, mapError(err)
}

// GetOrder returns the order with its details.
func (q *Queries) GetOrder(ctx context.Context, tenantID, orderID string) (domain.Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE tenant_id = $1 AND id = $2`,
		tenantID, orderID))
	if err != nil {
		return domain.Order{}, err
	}
	if o.Details, err = q.orderDetails(ctx, tenantID, orderID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// ListOrders returns the user's orders, newest first, without details.
func (q *Queries) ListOrders(ctx context.Context, tenantID, userID string) ([]domain.Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE  tenant_id = $1 AND user_id = $2
		ORDER  BY order_date DESC`, tenantID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		return scanOrder(row)
	})
	return orders, mapError(err)
}

func (q *Queries) GetPayment(ctx context.Context, tenantID, orderID string) (domain.Payment, error) {
	var p domain.Payment
	err := q.db.QueryRow(ctx, `
		SELECT id, tenant_id, order_id, payment_date, payment_method, payment_reference, amount
		FROM   payments
		WHERE  tenant_id = $1 AND order_id = $2`, tenantID, orderID,
	).Scan(&p.ID, &p.TenantID, &p.OrderID, &p.Date, &p.Method, &p.Reference, &p.Amount)
	return p, mapError(err)
}

func (q *Queries) insertPayment(ctx context.Context, p domain.Payment) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO payments (id, tenant_id, order_id, payment_date, payment_method, payment_reference, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.TenantID, p.OrderID, p.Date, p.Method, p.Reference, p.Amount)
	return mapError(err)
}

// transition is the compare-and-set on order_status.
func (q *Queries) transition(ctx context.Context, tenantID, orderID string, from, to domain.OrderStatus,
	shippingCode *string, shippingStatus *string) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE orders
		SET    order_status = $4, shipping_code = $5, shipping_status = $6
		WHERE  tenant_id = $1 AND id = $2 AND order_status = $3`,
		tenantID, orderID, from, to, shippingCode, shippingStatus)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrStatusChanged
	}
	return nil
}

// CreateOrder writes the order and its details in one transaction.
func (s *Store) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	var out domain.Order
	err := s.ExecTx(ctx, func(q *Queries) error {
		created, err := q.insertOrder(ctx, o)
		if err != nil {
			return err
		}
		for _, d := range o.Details {
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			d.OrderID = created.ID
			d.TenantID = created.TenantID
			saved, err := q.insertDetail(ctx, d)
			if err != nil {
				return err
			}
			created.Details = append(created.Details, saved)
		}
		out = created
		return nil
	})
	return out, err
}

// MarkPaid inserts the payment and moves the order from PENDING to PAID in
// one transaction. The payment insert goes first so a missing order reports
// payments_order_id_fkey, and a concurrent payer hits payments_order_id_key.
func (s *Store) MarkPaid(ctx context.Context, tenantID, orderID string, p domain.Payment, shippingCode string) (domain.Order, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.TenantID = tenantID
	p.OrderID = orderID

	var out domain.Order
	err := s.ExecTx(ctx, func(q *Queries) error {
		if err := q.insertPayment(ctx, p); err != nil {
			return err
		}
		shipping := string(domain.ShippingPending)
		if err := q.transition(ctx, tenantID, orderID, domain.StatusPending, domain.StatusPaid, &shippingCode, &shipping); err != nil {
			return err
		}
		o, err := q.GetOrder(ctx, tenantID, orderID)
		out = o
		return err
	})
	return out, err
}

func (s *Store) MarkCancelled(ctx context.Context, tenantID, orderID string) (domain.Order, error) {
	var out domain.Order
	err := s.ExecTx(ctx, func(q *Queries) error {
		if err := q.transition(ctx, tenantID, orderID, domain.StatusPending, domain.StatusCancelled, nil, nil); err != nil {
			if errors.Is(err, store.ErrStatusChanged) {
				// Distinguish a missing order from one that moved on.
				if _, getErr := q.GetOrder(ctx, tenantID, orderID); getErr != nil {
					return getErr
				}
			}
			return err
		}
		o, err := q.GetOrder(ctx, tenantID, orderID)
		out = o
		return err
	})
	return out, err
}
