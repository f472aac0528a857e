package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

var p1 = ProductQuote{ProductID: "p1", UnitPrice: decimal.RequireFromString("10"), AvailableQuantity: 5}
var p2 = ProductQuote{ProductID: "p2", UnitPrice: decimal.RequireFromString("2.50"), AvailableQuantity: 1}

func TestHTTPPricer(t *testing.T) {
	var calls int
	var got QuoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/product/v1/many", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		// Prices may arrive as JSON numbers or strings.
		_, _ = w.Write([]byte(`[{"id":"p1","price":10,"quantity_available":5},{"id":"p2","price":"2.50","quantity_available":1}]`))
	}))
	defer srv.Close()

	quotes, err := NewHTTPPricer(srv.URL, time.Second).Quote(context.Background(), []string{"p1", "p2", "p3"})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"p1", "p2", "p3"}, got.ProductIDs)
	require.Len(t, quotes, 2)
	assert.True(t, quotes[0].UnitPrice.Equal(p1.UnitPrice))
	assert.True(t, quotes[1].UnitPrice.Equal(p2.UnitPrice))
	assert.Equal(t, 5, quotes[0].AvailableQuantity)
}

func TestHTTPPricer_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req QuoteRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.ProductIDs[0] {
		case "slow":
			time.Sleep(200 * time.Millisecond)
		case "garbage":
			_, _ = w.Write([]byte(`{`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	pricer := NewHTTPPricer(srv.URL, 50*time.Millisecond)
	for _, id := range []string{"slow", "garbage", "error"} {
		_, err := pricer.Quote(context.Background(), []string{id})
		assert.ErrorIs(t, err, ErrUnavailable, id)
	}
}

func TestGRPCPricer_RoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	backend := NewFake(p1, p2)
	RegisterQuoteServer(s, backend)
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	pricer := NewGRPCPricer(conn, time.Second)

	quotes, err := pricer.Quote(context.Background(), []string{"p2", "missing"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "p2", quotes[0].ProductID)
	assert.True(t, quotes[0].UnitPrice.Equal(p2.UnitPrice))
	assert.Equal(t, 1, quotes[0].AvailableQuantity)

	backend.Fail(errors.New("db down"))
	_, err = pricer.Quote(context.Background(), []string{"p1"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = pricer.Quote(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFake(t *testing.T) {
	f := NewFake(p1)
	quotes, err := f.Quote(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	f.Put(p2)
	f.Remove("p1")
	quotes, _ = f.Quote(context.Background(), []string{"p1", "p2"})
	require.Len(t, quotes, 1)
	assert.Equal(t, "p2", quotes[0].ProductID)
	assert.Equal(t, 2, f.Calls())
}
