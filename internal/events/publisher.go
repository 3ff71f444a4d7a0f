package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

// Publisher announces account and movement changes on Kafka. Writes are
// asynchronous: delivery failures are logged from the completion callback and
// never reach the caller.
type Publisher struct {
	writer        *kafka.Writer
	accountTopic  string
	movementTopic string
}

func NewPublisher(brokers []string, accountTopic, movementTopic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			WriteTimeout: 5 * time.Second,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.Warn("event delivery failed", "messages", len(messages), "error", err)
				}
			},
		},
		accountTopic:  accountTopic,
		movementTopic: movementTopic,
	}
}

func (p *Publisher) PublishAccount(ctx context.Context, e domain.AccountEvent) error {
	data, err := encodeAccountEvent(e)
	if err != nil {
		return fmt.Errorf("PublishAccount: %w", err)
	}
	return p.write(ctx, p.accountTopic, e.Account.ID.String(), data)
}

func (p *Publisher) PublishMovement(ctx context.Context, e domain.MovementEvent) error {
	data, err := encodeMovementEvent(e)
	if err != nil {
		return fmt.Errorf("PublishMovement: %w", err)
	}
	return p.write(ctx, p.movementTopic, e.Movement.AccountID.String(), data)
}

func (p *Publisher) write(ctx context.Context, topic, key string, data []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishAccount(_ context.Context, e domain.AccountEvent) error {
	p.logger.Debug("account event", "event_type", e.EventType, "account_id", e.Account.ID)
	return nil
}

func (p *LogPublisher) PublishMovement(_ context.Context, e domain.MovementEvent) error {
	p.logger.Debug("movement event", "event_type", e.EventType, "movement_id", e.Movement.ID)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
