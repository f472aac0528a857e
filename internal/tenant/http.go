package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors/constants"
	"github.com/jcmexdev/marketplace/internal/store"
)

var _ Resolver = (*HTTPResolver)(nil)

// HTTPResolver calls the tenant service. The caller's bearer token, when
// present in ctx, is forwarded.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// Response is the body of GET /api/tenant/v1/{id}.
type Response struct {
	Tenants struct {
		ID      string `json:"id"`
		OwnerID string `json:"owner_id"`
	} `json:"tenants"`
	TenantDetails struct {
		TenantID    string `json:"tenant_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"tenantDetails"`
}

// ResponseOf builds the wire shape for t.
func ResponseOf(t Tenant) Response {
	var r Response
	r.Tenants.ID = t.ID
	r.Tenants.OwnerID = t.OwnerID
	r.TenantDetails.TenantID = t.ID
	r.TenantDetails.Name = t.Name
	r.TenantDetails.Description = t.Description
	return r
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, tenantID string) (Tenant, error) {
	endpoint := r.baseURL + "/api/tenant/v1/" + url.PathEscape(tenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Tenant{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if token := interceptors.BearerToken(ctx); token != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	httpx.ForwardRequestID(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return Tenant{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Tenant{}, fmt.Errorf("tenant: %q: %w", tenantID, store.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return Tenant{}, fmt.Errorf("%w: tenant service returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Tenant{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if body.Tenants.ID == "" {
		return Tenant{}, fmt.Errorf("%w: empty tenant record", ErrUnavailable)
	}

	return Tenant{
		ID:          body.Tenants.ID,
		OwnerID:     body.Tenants.OwnerID,
		Name:        body.TenantDetails.Name,
		Description: body.TenantDetails.Description,
	}, nil
}
