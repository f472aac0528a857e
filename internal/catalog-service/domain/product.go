// Package domain holds the catalog service product model.
package domain

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/marketplace/internal/catalog"
)

type Product struct {
	ID                string
	TenantID          string
	Name              string
	Description       string
	Price             decimal.Decimal
	QuantityAvailable int
	CategoryID        *string
}

// Quote returns the pricing view of p.
func (p Product) Quote() catalog.ProductQuote {
	return catalog.ProductQuote{
		ProductID:         p.ID,
		UnitPrice:         p.Price,
		AvailableQuantity: p.QuantityAvailable,
	}
}

type Category struct {
	ID       string
	TenantID string
	Name     string
}
