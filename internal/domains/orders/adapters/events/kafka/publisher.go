package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/secondhand-market/internal/platform/kafka"
)

// DefaultTopic receives every order lifecycle event.
const DefaultTopic = "market.order.events"

const eventTypeHeader = "event-type"

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher writes order events to Kafka keyed by order number, so all events
// of one order land on the same partition in commit order.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewPublisher wraps an existing producer. An empty topic falls back to DefaultTopic.
func NewPublisher(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

// NewSyncProducer dials the brokers with the platform producer settings.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	producer, err := sarama.NewSyncProducer(brokers, platformkafka.NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka publisher not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.OrderNo),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte(eventTypeHeader), Value: []byte(event.Type)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	p.logger.LogAttrs(ctx, slog.LevelDebug, "order event published",
		slog.String("event.type", string(event.Type)),
		slog.String("order.number", event.OrderNo),
		slog.Int("kafka.partition", int(partition)),
		slog.Int64("kafka.offset", offset))
	return nil
}

// Close releases the underlying producer.
func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
