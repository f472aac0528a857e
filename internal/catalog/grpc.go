package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
)

// The quote RPC carries google.protobuf.Struct messages so that no generated
// code is needed:
//
//	request:  {"productIds": ["p1", ...]}
//	response: {"products": [{"id": "p1", "price": "10.50", "quantity_available": 5}, ...]}
const (
	serviceName       = "catalog.v1.Catalog"
	quoteMethod       = "QuoteProducts"
	quoteFullMethod   = "/" + serviceName + "/" + quoteMethod
	fieldProductIDs   = "productIds"
	fieldProducts     = "products"
	fieldID           = "id"
	fieldPrice        = "price"
	fieldQuantityLeft = "quantity_available"
)

var _ Pricer = (*GRPCPricer)(nil)

// GRPCPricer quotes products over gRPC.
type GRPCPricer struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// DialGRPC connects to the catalog gRPC listener at addr.
func DialGRPC(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("catalog: dial %s: %w", addr, err)
	}
	return conn, nil
}

// NewGRPCPricer bounds every call by timeout. Zero means no bound beyond ctx.
func NewGRPCPricer(conn grpc.ClientConnInterface, timeout time.Duration) *GRPCPricer {
	return &GRPCPricer{conn: conn, timeout: timeout}
}

func (p *GRPCPricer) Quote(ctx context.Context, productIDs []string) ([]ProductQuote, error) {
	ids := make([]any, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id
	}
	req, err := structpb.NewStruct(map[string]any{fieldProductIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp := &structpb.Struct{}
	ctx = interceptors.ContextWithPropagatedID(ctx)
	if err := p.conn.Invoke(ctx, quoteFullMethod, req, resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeQuotes(resp)
}

func decodeQuotes(resp *structpb.Struct) ([]ProductQuote, error) {
	list := resp.GetFields()[fieldProducts].GetListValue().GetValues()
	out := make([]ProductQuote, 0, len(list))
	for _, v := range list {
		f := v.GetStructValue().GetFields()
		price, err := decimal.NewFromString(f[fieldPrice].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("%w: price of %q: %v", ErrUnavailable, f[fieldID].GetStringValue(), err)
		}
		out = append(out, ProductQuote{
			ProductID:         f[fieldID].GetStringValue(),
			UnitPrice:         price,
			AvailableQuantity: int(f[fieldQuantityLeft].GetNumberValue()),
		})
	}
	return out, nil
}

func encodeQuotes(quotes []ProductQuote) (*structpb.Struct, error) {
	products := make([]any, len(quotes))
	for i, q := range quotes {
		products[i] = map[string]any{
			fieldID:           q.ProductID,
			fieldPrice:        q.UnitPrice.String(),
			fieldQuantityLeft: q.AvailableQuantity,
		}
	}
	return structpb.NewStruct(map[string]any{fieldProducts: products})
}

// RegisterQuoteServer exposes p as the catalog quote RPC on s.
func RegisterQuoteServer(s grpc.ServiceRegistrar, p Pricer) {
	s.RegisterService(&quoteServiceDesc, p)
}

var quoteServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Pricer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: quoteMethod, Handler: quoteHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func quoteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, req any) (any, error) {
		return serveQuote(ctx, srv.(Pricer), req.(*structpb.Struct))
	}
	if interceptor == nil {
		return handle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: quoteFullMethod}
	return interceptor(ctx, in, info, handle)
}

func serveQuote(ctx context.Context, p Pricer, req *structpb.Struct) (*structpb.Struct, error) {
	values := req.GetFields()[fieldProductIDs].GetListValue().GetValues()
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id := v.GetStringValue(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, status.Error(codes.InvalidArgument, "productIds is required")
	}

	quotes, err := p.Quote(ctx, ids)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "quote products: %v", err)
	}
	resp, err := encodeQuotes(quotes)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode quotes: %v", err)
	}
	return resp, nil
}
