// Package orderlog builds order transition records stamped with the active
// OpenTelemetry span, so an audit row can be joined with its trace.
package orderlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
)

// TraceInfo holds the W3C identifiers of the span active in a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns empty fields when ctx carries no valid span.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewTransition records o moving from one status to its current one.
func NewTransition(ctx context.Context, o domain.Order, from domain.OrderStatus, note string, at time.Time) domain.Transition {
	ti := ExtractTraceInfo(ctx)
	return domain.Transition{
		OrderID:  o.ID,
		TenantID: o.TenantID,
		From:     from,
		To:       o.Status,
		Note:     note,
		TraceID:  ti.TraceID,
		SpanID:   ti.SpanID,
		At:       at.UTC(),
	}
}
