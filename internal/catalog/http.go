package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jcmexdev/marketplace/internal/pkg/httpx"
)

var _ Pricer = (*HTTPPricer)(nil)

// HTTPPricer calls POST /api/product/v1/many on the catalog service.
type HTTPPricer struct {
	url    string
	client *http.Client
}

// QuoteRequest is the body of POST /api/product/v1/many.
type QuoteRequest struct {
	ProductIDs []string `json:"productIds"`
}

func NewHTTPPricer(baseURL string, timeout time.Duration) *HTTPPricer {
	return &HTTPPricer{
		url:    baseURL + "/api/product/v1/many",
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPPricer) Quote(ctx context.Context, productIDs []string) ([]ProductQuote, error) {
	body, err := json.Marshal(QuoteRequest{ProductIDs: productIDs})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	httpx.ForwardRequestID(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog returned %d", ErrUnavailable, resp.StatusCode)
	}

	var quotes []ProductQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return quotes, nil
}
