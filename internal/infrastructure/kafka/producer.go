package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/observability"
	"github.com/honeynil/LavenderPOS/internal/models"
	"github.com/segmentio/kafka-go"
)

type EventPublisher interface {
	Publish(ctx context.Context, event models.PurchaseEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	p := &Producer{topic: topic}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion:   p.reportDelivery,
	}
	return p
}

// reportDelivery runs once the async writer has flushed a batch.
// WriteMessages returns before that, so broker failures only surface here.
func (p *Producer) reportDelivery(msgs []kafka.Message, err error) {
	if err == nil {
		slog.Debug("Kafka messages delivered", "topic", p.topic, "count", len(msgs))
		return
	}
	observability.EventDeliveryFailures.WithLabelValues(p.topic).Add(float64(len(msgs)))
	for _, msg := range msgs {
		slog.Error("failed to deliver Kafka message", "topic", p.topic, "barcode", string(msg.Key), "error", err)
	}
}

// Publish fills EventID and CreatedAt when empty and writes the event keyed by barcode,
// so every event of one purchase lands on the same partition.
func (p *Producer) Publish(ctx context.Context, event models.PurchaseEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Barcode),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("failed to queue Kafka message", "topic", p.topic, "type", event.Type, "barcode", event.Barcode, "error", err)
		return err
	}
	slog.Info("Kafka message queued", "topic", p.topic, "type", event.Type, "event_id", event.EventID)
	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		slog.Error("failed to close Kafka writer", "error", err)
		return err
	}
	slog.Info("Kafka writer closed")
	return nil
}
