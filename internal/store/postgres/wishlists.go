package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/marketplace/internal/wishlist-service/domain"
)

const (
	wishlistColumns = `id, tenant_id, user_id, name`
	itemColumns     = `id, tenant_id, wishlist_id, product_id`
)

func scanWishlist(row interface{ Scan(...any) error }) (domain.Wishlist, error) {
	var w domain.Wishlist
	err := row.Scan(&w.ID, &w.TenantID, &w.UserID, &w.Name)
	return w, mapError(err)
}

func scanItem(row interface{ Scan(...any) error }) (domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.TenantID, &it.WishlistID, &it.ProductID)
	return it, mapError(err)
}

func (q *Queries) ListWishlists(ctx context.Context, tenantID, userID string) ([]domain.Wishlist, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+wishlistColumns+` FROM wishlists
		WHERE  tenant_id = $1 AND user_id = $2
		ORDER  BY name, id`, tenantID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	lists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Wishlist, error) {
		return scanWishlist(row)
	})
	return lists, mapError(err)
}

// GetWishlist returns the wishlist with its items.
func (q *Queries) GetWishlist(ctx context.Context, tenantID, userID, wishlistID string) (domain.Wishlist, error) {
	w, err := scanWishlist(q.db.QueryRow(ctx, `
		SELECT `+wishlistColumns+` FROM wishlists
		WHERE  tenant_id = $1 AND user_id = $2 AND id = $3`,
		tenantID, userID, wishlistID))
	if err != nil {
		return domain.Wishlist{}, err
	}

	rows, err := q.db.Query(ctx, `
		SELECT `+itemColumns+` FROM wishlist_details
		WHERE  tenant_id = $1 AND wishlist_id = $2
		ORDER  BY product_id`, tenantID, wishlistID)
	if err != nil {
		return domain.Wishlist{}, mapError(err)
	}
	w.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Item, error) {
		return scanItem(row)
	})
	return w, mapError(err)
}

func (q *Queries) CreateWishlist(ctx context.Context, w domain.Wishlist) (domain.Wishlist, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return scanWishlist(q.db.QueryRow(ctx, `
		INSERT INTO wishlists (`+wishlistColumns+`) VALUES ($1, $2, $3, $4)
		RETURNING `+wishlistColumns,
		w.ID, w.TenantID, w.UserID, w.Name))
}

func (q *Queries) RenameWishlist(ctx context.Context, tenantID, userID, wishlistID, name string) (domain.Wishlist, error) {
	return scanWishlist(q.db.QueryRow(ctx, `
		UPDATE wishlists SET name = $4
		WHERE  tenant_id = $1 AND user_id = $2 AND id = $3
		RETURNING `+wishlistColumns,
		tenantID, userID, wishlistID, name))
}

// DeleteWishlist removes the wishlist. Its items go with it through the
// cascading foreign key.
func (q *Queries) DeleteWishlist(ctx context.Context, tenantID, userID, wishlistID string) (domain.Wishlist, error) {
	return scanWishlist(q.db.QueryRow(ctx, `
		DELETE FROM wishlists
		WHERE  tenant_id = $1 AND user_id = $2 AND id = $3
		RETURNING `+wishlistColumns,
		tenantID, userID, wishlistID))
}

// AddWishlistItem inserts the item only when its wishlist belongs to userID.
// Otherwise no row is returned and the result is store.ErrNotFound.
func (q *Queries) AddWishlistItem(ctx context.Context, userID string, it domain.Item) (domain.Item, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return scanItem(q.db.QueryRow(ctx, `
		INSERT INTO wishlist_details (`+itemColumns+`)
		SELECT $1, w.tenant_id, w.id, $4
		FROM   wishlists w
		WHERE  w.tenant_id = $2 AND w.user_id = $5 AND w.id = $3
		RETURNING `+itemColumns,
		it.ID, it.TenantID, it.WishlistID, it.ProductID, userID))
}

func (q *Queries) RemoveWishlistItem(ctx context.Context, tenantID, userID, itemID string) (domain.Item, error) {
	return scanItem(q.db.QueryRow(ctx, `
		DELETE FROM wishlist_details d
		USING  wishlists w
		WHERE  d.wishlist_id = w.id AND d.tenant_id = $1 AND w.user_id = $2 AND d.id = $3
		RETURNING d.id, d.tenant_id, d.wishlist_id, d.product_id`,
		tenantID, userID, itemID))
}
