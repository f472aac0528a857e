package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/store"
	"github.com/jcmexdev/marketplace/internal/tenant"
)

const (
	userSecret  = "user-secret"
	adminSecret = "admin-secret"
	tenantT     = "tenant-t"
	adminTenant = "platform"
)

type fakeDirectory map[string]User

func (d fakeDirectory) FindUser(_ context.Context, tenantID, userID string) (User, error) {
	u, ok := d[userID]
	if !ok || u.TenantID != tenantID {
		return User{}, store.ErrNotFound
	}
	return u, nil
}

type fakeResolver struct {
	tenants map[string]tenant.Tenant
	err     error
}

func (f fakeResolver) Resolve(_ context.Context, id string) (tenant.Tenant, error) {
	if f.err != nil {
		return tenant.Tenant{}, f.err
	}
	t, ok := f.tenants[id]
	if !ok {
		return tenant.Tenant{}, store.ErrNotFound
	}
	return t, nil
}

var (
	alice = User{ID: "u-alice", TenantID: tenantT, Role: RoleUser, Username: "alice", Email: "alice@example.com"}
	root  = User{ID: "u-root", TenantID: adminTenant, Role: RoleAdmin, Username: "root"}
	other = User{ID: "u-other", TenantID: adminTenant, Role: RoleAdmin, Username: "other"}
)

func directory() fakeDirectory {
	return fakeDirectory{alice.ID: alice, root.ID: root, other.ID: other}
}

func newTestChain(res tenant.Resolver) (*Chain, *Issuer) {
	users := directory()
	chain := NewChain(
		NewJWTVerifier(userSecret, RoleUser, tenantT, users),
		NewJWTVerifier(adminSecret, RoleAdmin, adminTenant, users),
		res,
	)
	return chain, NewIssuer(userSecret, adminSecret, time.Hour)
}

func ownedBy(owner string) fakeResolver {
	return fakeResolver{tenants: map[string]tenant.Tenant{
		tenantT: {ID: tenantT, OwnerID: owner, Name: "Shop"},
	}}
}

func mustIssue(t *testing.T, iss *Issuer, u User) string {
	t.Helper()
	token, err := iss.Issue(u)
	require.NoError(t, err)
	return token
}

func signRaw(t *testing.T, method jwt.SigningMethod, secret string, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTVerifier_ValidUserToken(t *testing.T) {
	chain, iss := newTestChain(nil)

	p, err := chain.Authorize(context.Background(), mustIssue(t, iss, alice), ScopeUser)

	require.NoError(t, err)
	assert.Equal(t, alice.ID, p.ID)
	assert.Equal(t, tenantT, p.TenantID)
	assert.Equal(t, RoleUser, p.Role)
	assert.Equal(t, "alice@example.com", p.Email)
}

func TestJWTVerifier_Rejections(t *testing.T) {
	_, iss := newTestChain(nil)
	v := NewJWTVerifier(userSecret, RoleUser, tenantT, directory())

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := []struct {
		name  string
		token string
		want  Reason
	}{
		{"missing", "", ReasonMissingToken},
		{"garbage", "not-a-jwt", ReasonInvalidToken},
		{"admin token at user scope", mustIssue(t, iss, root), ReasonInvalidToken},
		{"wrong secret", signRaw(t, jwt.SigningMethodHS256, "nope", Claims{
			UserID: alice.ID, TenantID: tenantT, Role: RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		}), ReasonInvalidToken},
		{"unexpected algorithm", signRaw(t, jwt.SigningMethodHS512, userSecret, Claims{
			UserID: alice.ID, TenantID: tenantT, Role: RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		}), ReasonInvalidToken},
		{"expired", signRaw(t, jwt.SigningMethodHS256, userSecret, Claims{
			UserID: alice.ID, TenantID: tenantT, Role: RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: past},
		}), ReasonInvalidToken},
		{"no expiry", signRaw(t, jwt.SigningMethodHS256, userSecret, Claims{
			UserID: alice.ID, TenantID: tenantT, Role: RoleUser,
		}), ReasonInvalidToken},
		{"tenant mismatch", signRaw(t, jwt.SigningMethodHS256, userSecret, Claims{
			UserID: alice.ID, TenantID: "tenant-y", Role: RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		}), ReasonTenantMismatch},
		{"deleted principal", signRaw(t, jwt.SigningMethodHS256, userSecret, Claims{
			UserID: "u-ghost", TenantID: tenantT, Role: RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		}), ReasonPrincipalNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tc.token)
			require.Error(t, err)
			assert.Equal(t, tc.want, ReasonOf(err))
		})
	}
}

func TestJWTVerifier_DirectoryFailureIsUpstream(t *testing.T) {
	v := NewJWTVerifier(userSecret, RoleUser, tenantT, failingDirectory{})
	_, iss := newTestChain(nil)

	_, err := v.Verify(context.Background(), mustIssue(t, iss, alice))

	assert.Equal(t, ReasonUpstreamUnavailable, ReasonOf(err))
}

type failingDirectory struct{}

func (failingDirectory) FindUser(context.Context, string, string) (User, error) {
	return User{}, errors.New("connection refused")
}

func TestChain_WrongTenantClaimAlwaysUnauthorized(t *testing.T) {
	chain, _ := newTestChain(nil)
	for _, secret := range []string{userSecret, adminSecret, "random"} {
		token := signRaw(t, jwt.SigningMethodHS256, secret, Claims{
			UserID: alice.ID, TenantID: "tenant-x", Role: RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		_, err := chain.Authorize(context.Background(), token, ScopeUser)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err), "secret %q", secret)
	}
}

func TestChain_AdminOwnerOf(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		chain, iss := newTestChain(ownedBy(root.ID))
		p, err := chain.Authorize(context.Background(), mustIssue(t, iss, root), ScopeAdminOwnerOf(tenantT))
		require.NoError(t, err)
		assert.Equal(t, root.ID, p.ID)
	})

	t.Run("valid admin who is not the owner", func(t *testing.T) {
		chain, iss := newTestChain(ownedBy(root.ID))
		_, err := chain.Authorize(context.Background(), mustIssue(t, iss, other), ScopeAdminOwnerOf(tenantT))
		assert.Equal(t, ReasonNotOwner, ReasonOf(err))
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("plain admin scope skips ownership", func(t *testing.T) {
		chain, iss := newTestChain(ownedBy(root.ID))
		_, err := chain.Authorize(context.Background(), mustIssue(t, iss, other), ScopeAdmin)
		assert.NoError(t, err)
	})

	t.Run("resolver failure is internal", func(t *testing.T) {
		chain, iss := newTestChain(fakeResolver{err: tenant.ErrUnavailable})
		_, err := chain.Authorize(context.Background(), mustIssue(t, iss, root), ScopeAdminOwnerOf(tenantT))
		assert.Equal(t, ReasonUpstreamUnavailable, ReasonOf(err))
		assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(err))
	})

	t.Run("missing tenant is not found", func(t *testing.T) {
		chain, iss := newTestChain(ownedBy(root.ID))
		_, err := chain.Authorize(context.Background(), mustIssue(t, iss, root), ScopeAdminOwnerOf("tenant-gone"))
		assert.Equal(t, ReasonTenantNotFound, ReasonOf(err))
		assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
		assert.Equal(t, "Tenant not found", apperr.As(err).Message)
	})

	t.Run("user token is not an admin token", func(t *testing.T) {
		chain, iss := newTestChain(ownedBy(alice.ID))
		_, err := chain.Authorize(context.Background(), mustIssue(t, iss, alice), ScopeAdminOwnerOf(tenantT))
		assert.Equal(t, ReasonInvalidToken, ReasonOf(err))
	})
}

func TestChain_ScopeNoneIsAnonymous(t *testing.T) {
	chain, _ := newTestChain(nil)
	p, err := chain.Authorize(context.Background(), "", ScopeNone)
	require.NoError(t, err)
	assert.True(t, p.Anonymous())
}

func TestRequire_RejectionBodiesAreIdentical(t *testing.T) {
	chain, iss := newTestChain(ownedBy(root.ID))
	h := RequireScope(chain, ScopeAdminOwnerOf(tenantT))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	badSig := signRaw(t, jwt.SigningMethodHS256, "nope", Claims{
		UserID: root.ID, TenantID: adminTenant, Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	headers := map[string]string{
		"missing":       "",
		"bad signature": "Bearer " + badSig,
		"not owner":     "Bearer " + mustIssue(t, iss, other),
	}

	var bodies []string
	for name, header := range headers {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, name)
		bodies = append(bodies, rec.Body.String())
	}

	for _, b := range bodies {
		assert.JSONEq(t, `{"error":"unauthorized","message":"Invalid token"}`, b)
	}
}

func TestRequire_StoresPrincipal(t *testing.T) {
	chain, iss := newTestChain(nil)
	var got Principal
	h := RequireScope(chain, ScopeUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustIssue(t, iss, alice))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, alice.ID, got.ID)
}

// emptyKeyToken signs c with HS256 and a zero length key.
func emptyKeyToken(t *testing.T, c Claims) string {
	t.Helper()
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(c)
	require.NoError(t, err)
	signing := header + "." + enc.EncodeToString(payload)
	mac := hmac.New(sha256.New, nil)
	mac.Write([]byte(signing))
	return signing + "." + enc.EncodeToString(mac.Sum(nil))
}

func TestEmptySecretNeverSignsOrVerifies(t *testing.T) {
	_, err := NewIssuer("", "", time.Hour).Issue(root)
	require.ErrorIs(t, err, ErrEmptySecret)

	forged := emptyKeyToken(t, Claims{
		UserID: root.ID, TenantID: adminTenant, Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	_, err = NewJWTVerifier("", RoleAdmin, adminTenant, directory()).Verify(context.Background(), forged)
	require.Error(t, err)
	assert.Equal(t, ReasonInvalidToken, ReasonOf(err))
}
