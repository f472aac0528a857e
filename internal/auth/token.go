package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of every token minted by the identity service.
type Claims struct {
	UserID   string `json:"id"`
	TenantID string `json:"tenant_id"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ErrEmptySecret is returned when a token would be signed or checked with an
// empty HMAC key.
var ErrEmptySecret = errors.New("auth: empty signing secret")

// Issuer signs user tokens and admin tokens with separate secrets.
type Issuer struct {
	userSecret  []byte
	adminSecret []byte
	ttl         time.Duration
	now         func() time.Time
}

func NewIssuer(userSecret, adminSecret string, ttl time.Duration) *Issuer {
	return &Issuer{
		userSecret:  []byte(userSecret),
		adminSecret: []byte(adminSecret),
		ttl:         ttl,
		now:         time.Now,
	}
}

// Issue mints a token for u using the secret of u's role.
func (i *Issuer) Issue(u User) (string, error) {
	secret, err := i.secretFor(u.Role)
	if err != nil {
		return "", err
	}

	now := i.now()
	claims := Claims{
		UserID:   u.ID,
		TenantID: u.TenantID,
		Role:     u.Role,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) secretFor(role Role) ([]byte, error) {
	var secret []byte
	switch role {
	case RoleUser:
		secret = i.userSecret
	case RoleAdmin:
		secret = i.adminSecret
	default:
		return nil, fmt.Errorf("auth: unknown role %q", role)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("auth: %s role: %w", role, ErrEmptySecret)
	}
	return secret, nil
}

func parseToken(raw string, secret []byte, now func() time.Time) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) {
			if len(secret) == 0 {
				return nil, ErrEmptySecret
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
