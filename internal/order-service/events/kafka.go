// Package events publishes order events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/order-service/ports"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors/constants"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes one message per event, keyed by order id so all
// events of an order land on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
	closed atomic.Bool
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			slog.Error(fmt.Sprintf("kafka writer: "+msg, args...))
		}),
	})
}

func newPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e domain.Event) error {
	if p.closed.Load() {
		return fmt.Errorf("events: publisher closed")
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", e.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.OrderID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
			{Key: constants.HeaderXRequestId, Value: []byte(interceptors.RequestID(ctx))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write %s for %q: %w", e.Type, e.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
