// Package domain holds the wishlist records. A wishlist belongs to one user
// of one tenant, and its items name catalog products.
package domain

// Wishlist is a named list of products. Items is only populated when a single
// wishlist is read.
type Wishlist struct {
	ID       string
	TenantID string
	UserID   string
	Name     string
	Items    []Item
}

// Item puts ProductID on a wishlist. (WishlistID, ProductID) is unique.
type Item struct {
	ID         string
	TenantID   string
	WishlistID string
	ProductID  string
}
