// Package catalog is the order side view of the catalog service: a batch
// price and availability lookup.
package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ProductQuote is the authoritative price of a product at the moment it was
// asked for. Quotes are never persisted.
type ProductQuote struct {
	ProductID         string          `json:"id"`
	UnitPrice         decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"quantity_available"`
}

// Pricer quotes a batch of products in one round trip. Ids that do not exist
// are absent from the result, not an error.
type Pricer interface {
	Quote(ctx context.Context, productIDs []string) ([]ProductQuote, error)
}

// ErrUnavailable is returned when the catalog could not answer.
var ErrUnavailable = errors.New("catalog: pricer unavailable")

// Index maps quotes by product id.
func Index(quotes []ProductQuote) map[string]ProductQuote {
	out := make(map[string]ProductQuote, len(quotes))
	for _, q := range quotes {
		out[q.ProductID] = q
	}
	return out
}

var _ Pricer = (*Fake)(nil)

// Fake is an in-memory Pricer.
type Fake struct {
	mu       sync.Mutex
	products map[string]ProductQuote
	err      error
	calls    int
}

func NewFake(quotes ...ProductQuote) *Fake {
	return &Fake{products: Index(quotes)}
}

func (f *Fake) Quote(_ context.Context, productIDs []string) ([]ProductQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ProductQuote, 0, len(productIDs))
	for _, id := range productIDs {
		if q, ok := f.products[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// Put adds or replaces a product quote.
func (f *Fake) Put(q ProductQuote) {
	f.mu.Lock()
	f.products[q.ProductID] = q
	f.mu.Unlock()
}

// Remove drops a product, as if it were deleted from the catalog.
func (f *Fake) Remove(productID string) {
	f.mu.Lock()
	delete(f.products, productID)
	f.mu.Unlock()
}

// Fail makes every following call return err. Fail(nil) recovers.
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Calls reports how many Quote calls were made.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
