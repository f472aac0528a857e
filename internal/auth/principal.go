// Package auth establishes who is calling and whether they may act within a
// tenant. Handlers only ever see a Principal produced by Chain.Authorize.
package auth

import (
	"context"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account as stored by the identity service, without secrets.
type User struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// UserDirectory looks accounts up within a tenant. A missing account is
// store.ErrNotFound.
type UserDirectory interface {
	FindUser(ctx context.Context, tenantID, userID string) (User, error)
}

// Principal is the verified identity of the caller for one request.
type Principal struct {
	ID       string
	TenantID string
	Role     Role
	Username string
	Email    string
	FullName string
}

// Anonymous reports whether p carries no identity (ScopeNone requests).
func (p Principal) Anonymous() bool { return p.ID == "" }

func principalOf(u User) Principal {
	return Principal{
		ID:       u.ID,
		TenantID: u.TenantID,
		Role:     u.Role,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by Require.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
