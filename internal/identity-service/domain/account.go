// Package domain holds the identity service account model.
package domain

import (
	"github.com/jcmexdev/marketplace/internal/auth"
)

// Account is a stored user together with its credentials.
type Account struct {
	auth.User
	PasswordHash string
	Address      string
	PhoneNumber  string
}
