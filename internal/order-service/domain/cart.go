package domain

// CartLine is one product in a user's cart. (TenantID, UserID, ProductID)
// is unique; Quantity is positive.
type CartLine struct {
	ID        string
	TenantID  string
	UserID    string
	ProductID string
	Quantity  int
}
