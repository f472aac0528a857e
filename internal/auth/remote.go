package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

var _ Verifier = (*RemoteVerifier)(nil)

// RemoteVerifier delegates verification to the identity service.
type RemoteVerifier struct {
	url      string
	tenantID string
	client   *http.Client
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	User User `json:"user"`
}

// NewRemoteVerifier posts tokens to baseURL+path. The returned user must
// belong to tenantID.
func NewRemoteVerifier(baseURL, path, tenantID string, timeout time.Duration) *RemoteVerifier {
	return &RemoteVerifier{
		url:      baseURL + path,
		tenantID: tenantID,
		client:   &http.Client{Timeout: timeout},
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, fail(ReasonMissingToken, nil)
	}

	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return Principal{}, fail(ReasonUpstreamUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return Principal{}, fail(ReasonUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	httpx.ForwardRequestID(req)

	resp, err := v.client.Do(req)
	if err != nil {
		return Principal{}, fail(ReasonUpstreamUnavailable, fmt.Errorf("verify token: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return Principal{}, fail(ReasonInvalidToken, fmt.Errorf("identity service returned %d", resp.StatusCode))
	default:
		return Principal{}, fail(ReasonUpstreamUnavailable, fmt.Errorf("identity service returned %d", resp.StatusCode))
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Principal{}, fail(ReasonUpstreamUnavailable, fmt.Errorf("decode verify response: %w", err))
	}
	if out.User.ID == "" {
		return Principal{}, fail(ReasonPrincipalNotFound, nil)
	}
	if out.User.TenantID != v.tenantID {
		return Principal{}, fail(ReasonTenantMismatch, fmt.Errorf("tenant %q", out.User.TenantID))
	}
	return principalOf(out.User), nil
}
