package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/marketplace/internal/store"
)

// Verifier turns a raw token into the principal it was issued for.
// Failures are *Failure values.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

var _ Verifier = (*JWTVerifier)(nil)

// JWTVerifier checks tokens in process. One instance serves one role: the
// user and admin secrets are never interchangeable.
type JWTVerifier struct {
	secret   []byte
	role     Role
	tenantID string
	users    UserDirectory
	now      func() time.Time
}

// NewJWTVerifier returns a verifier accepting role tokens signed with secret
// whose tenant claim equals tenantID and whose subject exists in users.
func NewJWTVerifier(secret string, role Role, tenantID string, users UserDirectory) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		role:     role,
		tenantID: tenantID,
		users:    users,
		now:      time.Now,
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, fail(ReasonMissingToken, nil)
	}

	claims, err := parseToken(token, v.secret, v.now)
	if err != nil {
		return Principal{}, fail(ReasonInvalidToken, err)
	}
	if claims.Role != v.role {
		return Principal{}, fail(ReasonInvalidToken, fmt.Errorf("role %q, want %q", claims.Role, v.role))
	}
	if claims.TenantID != v.tenantID {
		return Principal{}, fail(ReasonTenantMismatch, fmt.Errorf("tenant %q", claims.TenantID))
	}

	u, err := v.users.FindUser(ctx, v.tenantID, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return Principal{}, fail(ReasonPrincipalNotFound, err)
	}
	if err != nil {
		return Principal{}, fail(ReasonUpstreamUnavailable, err)
	}
	if u.Role != v.role {
		return Principal{}, fail(ReasonPrincipalNotFound, fmt.Errorf("stored role %q", u.Role))
	}

	return principalOf(u), nil
}
