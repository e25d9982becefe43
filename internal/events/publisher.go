package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/notfawkes/FitMeat/internal/orders"
	"github.com/segmentio/kafka-go"
)

// OrderCompletedEvent is published once per placed order for downstream
// consumers (kitchen dashboard, notifications).
type OrderCompletedEvent struct {
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	Items       []orders.OrderItem `json:"items"`
	TotalAmount int64              `json:"total_amount"`
	Currency    string             `json:"currency"`
	TimeSlot    string             `json:"time_slot"`
	CompletedAt time.Time          `json:"completed_at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-completed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, event *OrderCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.completed")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
