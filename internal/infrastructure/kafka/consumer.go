package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/honeynil/LavenderPOS/internal/infrastructure/observability"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/redis"
	"github.com/honeynil/LavenderPOS/internal/models"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer turns purchase lifecycle events into metrics and drops stale dashboard caches.
type Consumer struct {
	reader      messageReader
	redisClient redis.RedisClient
}

func NewConsumer(brokers []string, topic, groupID string, redisClient redis.RedisClient) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		redisClient: redisClient,
	}
}

// Consume blocks until ctx is done.
func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Kafka consumer stopped")
				return
			}
			slog.Error("failed to read Kafka message", "error", err)
			continue
		}

		if err := c.HandleMessage(ctx, msg.Value); err != nil {
			slog.Error("failed to handle purchase event", "key", string(msg.Key), "error", err)
		}
	}
}

func (c *Consumer) HandleMessage(ctx context.Context, value []byte) error {
	var event models.PurchaseEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal purchase event: %w", err)
	}

	switch event.Type {
	case models.EventPurchaseCreated, models.EventPurchaseClaimed, models.EventPurchaseCancelled:
	case models.EventPurchaseConfirmed:
		if event.Amount > 0 {
			observability.PurchaseAmount.Add(event.Amount)
		}
		if err := c.redisClient.Del(ctx, redis.TransactionsKey(event.UserID)); err != nil {
			slog.Error("failed to invalidate dashboard cache", "user_id", event.UserID, "error", err)
		}
	default:
		return fmt.Errorf("unknown purchase event type %q", event.Type)
	}

	observability.PurchaseEvents.WithLabelValues(string(event.Type)).Inc()
	slog.Info("purchase event processed", "type", event.Type, "event_id", event.EventID, "barcode", event.Barcode, "user_id", event.UserID)
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
