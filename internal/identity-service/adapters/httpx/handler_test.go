package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/identity-service/app"
	pkghttpx "github.com/jcmexdev/marketplace/internal/pkg/httpx"
	"github.com/jcmexdev/marketplace/internal/store/memory"
)

const tenantID = "tenant-t"

func newRouter() http.Handler {
	s := memory.New()
	svc := app.NewService(tenantID, "platform", s,
		auth.NewIssuer("user-secret", "admin-secret", time.Hour),
		auth.NewJWTVerifier("user-secret", auth.RoleUser, tenantID, s),
		auth.NewJWTVerifier("admin-secret", auth.RoleAdmin, "platform", s),
		app.WithHashCost(bcrypt.MinCost),
	)
	return NewRouter(NewHandler(svc))
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, &buf))
	return rec
}

func TestRegisterLoginVerifyOverHTTP(t *testing.T) {
	h := newRouter()
	reg := RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "correct-horse", FullName: "Alice"}

	rec := post(t, h, "/api/auth/v1/register", reg)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = post(t, h, "/api/auth/v1/register", reg)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(t, h, "/api/auth/v1/login", LoginRequest{Username: "alice", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "Alice", login.User.FullName)

	rec = post(t, h, "/api/auth/v1/verify-token", VerifyRequest{Token: login.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	var verified UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verified))
	assert.Equal(t, login.User.ID, verified.User.ID)
	assert.Equal(t, tenantID, verified.User.TenantID)

	rec = post(t, h, "/api/auth/v1/verify-admin-token", VerifyRequest{Token: login.Token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body pkghttpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body.Message)
}

func TestVerifyRejectsBadInput(t *testing.T) {
	h := newRouter()

	rec := post(t, h, "/api/auth/v1/verify-token", VerifyRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/api/auth/v1/verify-token", VerifyRequest{Token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/v1/login", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminLoginOverHTTP(t *testing.T) {
	h := newRouter()

	rec := post(t, h, "/api/auth/v1/admin/register", RegisterRequest{Username: "root", Email: "root@example.com", Password: "super-secret"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = post(t, h, "/api/auth/v1/login", LoginRequest{Username: "root", Password: "super-secret"})
	assert.Equal(t, http.StatusNotFound, rec.Code, "admins do not log in as users")

	rec = post(t, h, "/api/auth/v1/admin/login", LoginRequest{Username: "root", Password: "super-secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, auth.RoleAdmin, login.User.Role)

	rec = post(t, h, "/api/auth/v1/verify-admin-token", VerifyRequest{Token: login.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}
