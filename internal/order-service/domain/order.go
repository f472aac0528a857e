package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is created PENDING from a priced cart snapshot. TotalAmount is fixed
// at creation and never recomputed.
type Order struct {
	ID               string
	TenantID         string
	UserID           string
	OrderDate        time.Time
	TotalAmount      decimal.Decimal
	Status           OrderStatus
	ShippingProvider ShippingProvider
	ShippingCode     *string
	ShippingStatus   *ShippingStatus
	Details          []OrderDetail
}

// OrderDetail is the immutable price and quantity ledger of one order line.
type OrderDetail struct {
	ID        string
	TenantID  string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (d OrderDetail) Subtotal() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// Total sums the subtotals of details.
func Total(details []OrderDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.Subtotal())
	}
	return total
}

type Payment struct {
	ID        string
	TenantID  string
	OrderID   string
	Date      time.Time
	Method    string
	Reference string
	Amount    decimal.Decimal
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
)

type ShippingStatus string

const ShippingPending ShippingStatus = "PENDING"

type ShippingProvider string

const (
	ProviderJNE         ShippingProvider = "JNE"
	ProviderTIKI        ShippingProvider = "TIKI"
	ProviderSICEPAT     ShippingProvider = "SICEPAT"
	ProviderGOSEND      ShippingProvider = "GOSEND"
	ProviderGrabExpress ShippingProvider = "GRAB_EXPRESS"
)

// ParseShippingProvider reports whether s names a supported provider.
func ParseShippingProvider(s string) (ShippingProvider, bool) {
	switch p := ShippingProvider(s); p {
	case ProviderJNE, ProviderTIKI, ProviderSICEPAT, ProviderGOSEND, ProviderGrabExpress:
		return p, true
	}
	return "", false
}
