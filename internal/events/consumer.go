package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

type customerStore interface {
	Upsert(ctx context.Context, c *domain.Customer) error
}

// CustomerConsumer keeps the local customer projection in sync with the
// customer service's event stream.
type CustomerConsumer struct {
	reader    *kafka.Reader
	customers customerStore
	logger    *slog.Logger
}

func NewCustomerConsumer(brokers []string, topic, groupID string, customers customerStore, logger *slog.Logger) *CustomerConsumer {
	return &CustomerConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       1 << 20,
			CommitInterval: time.Second,
		}),
		customers: customers,
		logger:    logger,
	}
}

const fetchRetryDelay = time.Second

func (c *CustomerConsumer) Start(ctx context.Context) error {
	c.logger.Info("customer consumer started", "topic", c.reader.Config().Topic)
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				c.logger.Info("customer consumer stopped")
				return nil
			}
			c.logger.Error("failed to fetch customer event", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		c.handle(ctx, msg.Value, msg.Time)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit customer event", "offset", msg.Offset, "error", err)
		}
	}
}

// handle applies one message. Bad payloads are logged and skipped so that a
// single poison message cannot stall the partition.
func (c *CustomerConsumer) handle(ctx context.Context, payload []byte, receivedAt time.Time) {
	event, err := DecodeCustomerEvent(payload, receivedAt)
	if err != nil {
		c.logger.Warn("skipping malformed customer event", "error", err)
		return
	}

	if err := c.customers.Upsert(ctx, event.Customer()); err != nil {
		c.logger.Error("failed to store customer", "customer_id", event.CustomerID, "error", err)
		return
	}

	c.logger.Info("customer event applied", "event_type", event.EventType, "customer_id", event.CustomerID)
}
