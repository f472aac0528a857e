package interceptors

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/marketplace/internal/pkg/interceptors/constants"
)

// WithRequestMetadata stores the request id and idempotency key in ctx.
func WithRequestMetadata(ctx context.Context, requestID, idempotencyKey string) context.Context {
	ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)
}

// RequestID returns the request id carried by ctx, "unknown" if none.
func RequestID(ctx context.Context) string {
	if id := GetMetadataValue(ctx, constants.ContextKeyRequestID); id != "" {
		return id
	}
	return "unknown"
}

// IdempotencyKey returns the client supplied idempotency key, if any.
func IdempotencyKey(ctx context.Context) string {
	return GetMetadataValue(ctx, constants.ContextKeyIdempotencyKey)
}

func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyBearerToken, token)
}

// BearerToken returns the raw token of the caller the current request acts for.
func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(constants.ContextKeyBearerToken).(string)
	return token
}

// ContextWithPropagatedID copies the request id and idempotency key into the
// outgoing gRPC metadata.
func ContextWithPropagatedID(ctx context.Context) context.Context {
	pairs := []string{constants.HeaderXRequestId, RequestID(ctx)}
	if key := IdempotencyKey(ctx); key != "" {
		pairs = append(pairs, constants.HeaderXIdempotencyKey, key)
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

// GetMetadataValue looks key up in the context values first and then in the
// incoming gRPC metadata.
func GetMetadataValue[K ~string](ctx context.Context, key K) string {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(string(key)); len(ids) > 0 {
			return ids[0]
		}
	}
	return ""
}
