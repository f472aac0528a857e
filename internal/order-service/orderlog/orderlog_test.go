package orderlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
)

func TestNewTransition_StampsSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	o := domain.Order{ID: "o1", TenantID: "t1", Status: domain.StatusPaid}
	tr := NewTransition(ctx, o, domain.StatusPending, "paid", time.Now())

	assert.Equal(t, span.SpanContext().TraceID().String(), tr.TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), tr.SpanID)
	assert.Equal(t, domain.StatusPending, tr.From)
	assert.Equal(t, domain.StatusPaid, tr.To)
}

func TestExtractTraceInfo_NoSpan(t *testing.T) {
	assert.Equal(t, TraceInfo{}, ExtractTraceInfo(context.Background()))
}
