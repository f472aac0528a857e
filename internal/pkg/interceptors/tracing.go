package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/marketplace/internal/pkg/interceptors/constants"
)

// TraceServerInterceptor moves the request id and idempotency key from the
// incoming metadata into the context and logs the call.
func TraceServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := ""
		idempotencyKey := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(constants.HeaderXRequestId); len(ids) > 0 {
				requestID = ids[0]
			}
			if ids := md.Get(constants.HeaderXIdempotencyKey); len(ids) > 0 {
				idempotencyKey = ids[0]
			}
		}
		ctx = WithRequestMetadata(ctx, requestID, idempotencyKey)

		resp, err := handler(ctx, req)
		if err != nil {
			slog.WarnContext(ctx, "grpc call failed",
				"method", info.FullMethod, "request_id", requestID, "error", err)
			return resp, err
		}
		slog.InfoContext(ctx, "grpc call",
			"method", info.FullMethod, "request_id", requestID, "idempotency_key", idempotencyKey)
		return resp, nil
	}
}

// PropagateClientInterceptor forwards request metadata on every outbound call.
func PropagateClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(ContextWithPropagatedID(ctx), method, req, reply, cc, opts...)
	}
}
