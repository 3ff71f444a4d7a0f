package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

// CustomerFeed writes customer events in the customer service's wire format.
// It backs the local customer-feed tool used to seed the directory.
type CustomerFeed struct {
	writer *kafka.Writer
}

func NewCustomerFeed(brokers []string, topic string) *CustomerFeed {
	return &CustomerFeed{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
	}
}

func (f *CustomerFeed) Publish(ctx context.Context, e domain.CustomerEvent) error {
	data, err := encodeCustomerEvent(e)
	if err != nil {
		return fmt.Errorf("CustomerFeed.Publish: %w", err)
	}
	err = f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.CustomerID, 10)),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("CustomerFeed.Publish: %w", err)
	}
	return nil
}

func (f *CustomerFeed) Close() error {
	return f.writer.Close()
}
