package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// BrokerCheck returns a readiness probe that succeeds once any broker in the
// list accepts a connection.
func BrokerCheck(brokers []string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, b := range brokers {
			conn, err := kafka.DialContext(ctx, "tcp", b)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			conn.Close()
			return nil
		}
		return fmt.Errorf("BrokerCheck: %w", errors.Join(errs...))
	}
}
