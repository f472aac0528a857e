package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
	"github.com/jcmexdev/marketplace/internal/store"
	"github.com/jcmexdev/marketplace/internal/tenant"
)

type scopeKind int

const (
	scopeNone scopeKind = iota
	scopeUser
	scopeAdmin
	scopeAdminOwner
)

// Scope is what a request requires of its caller.
type Scope struct {
	kind     scopeKind
	tenantID string
}

var (
	// ScopeNone requires no credential; the principal is anonymous.
	ScopeNone = Scope{kind: scopeNone}
	// ScopeUser requires a valid user token for this tenant.
	ScopeUser = Scope{kind: scopeUser}
	// ScopeAdmin requires a valid admin token, without any ownership check.
	ScopeAdmin = Scope{kind: scopeAdmin}
)

// ScopeAdminOwnerOf requires a valid admin token whose subject owns tenantID.
func ScopeAdminOwnerOf(tenantID string) Scope {
	return Scope{kind: scopeAdminOwner, tenantID: tenantID}
}

func (s Scope) String() string {
	switch s.kind {
	case scopeUser:
		return "user"
	case scopeAdmin:
		return "admin"
	case scopeAdminOwner:
		return "admin_owner_of:" + s.tenantID
	default:
		return "none"
	}
}

// Chain composes token verification with tenant ownership.
type Chain struct {
	users   Verifier
	admins  Verifier
	tenants tenant.Resolver
}

// NewChain builds a chain. tenants may be nil when no route needs
// ScopeAdminOwnerOf.
func NewChain(users, admins Verifier, tenants tenant.Resolver) *Chain {
	return &Chain{users: users, admins: admins, tenants: tenants}
}

// Authorize verifies token against scope. Rejections are *apperr.Error
// values of kind Unauthorized sharing one message. A missing tenant is
// NotFound and an unreachable peer is Internal. The underlying *Failure is
// kept in the chain for logs.
func (c *Chain) Authorize(ctx context.Context, token string, scope Scope) (Principal, error) {
	p, err := c.authorize(ctx, token, scope)
	if err != nil {
		slog.WarnContext(ctx, "authorization rejected",
			"scope", scope.String(), "reason", ReasonOf(err).String(), "error", err)
		return Principal{}, classify(err)
	}
	return p, nil
}

func (c *Chain) authorize(ctx context.Context, token string, scope Scope) (Principal, error) {
	switch scope.kind {
	case scopeNone:
		return Principal{}, nil
	case scopeUser:
		return verify(ctx, c.users, token)
	case scopeAdmin:
		return verify(ctx, c.admins, token)
	case scopeAdminOwner:
		p, err := verify(ctx, c.admins, token)
		if err != nil {
			return Principal{}, err
		}
		return p, c.checkOwner(interceptors.WithBearerToken(ctx, token), p, scope.tenantID)
	default:
		return Principal{}, fail(ReasonInvalidToken, fmt.Errorf("unknown scope %d", scope.kind))
	}
}

func verify(ctx context.Context, v Verifier, token string) (Principal, error) {
	if token == "" {
		return Principal{}, fail(ReasonMissingToken, nil)
	}
	if v == nil {
		return Principal{}, fail(ReasonUpstreamUnavailable, errors.New("no verifier configured"))
	}
	return v.Verify(ctx, token)
}

func (c *Chain) checkOwner(ctx context.Context, p Principal, tenantID string) error {
	if c.tenants == nil {
		return fail(ReasonUpstreamUnavailable, errors.New("no tenant resolver configured"))
	}
	t, err := c.tenants.Resolve(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return fail(ReasonTenantNotFound, err)
	}
	if err != nil {
		return fail(ReasonUpstreamUnavailable, err)
	}
	if t.OwnerID != p.ID {
		return fail(ReasonNotOwner, fmt.Errorf("tenant %q owned by %q", t.ID, t.OwnerID))
	}
	return nil
}
