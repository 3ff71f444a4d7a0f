// Command customer-feed publishes one customer event onto the customer topic,
// standing in for the customer service during local development.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/events"
	"github.com/josh-kwaku/accounting-service/internal/logging"
)

type feedConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS,required" envSeparator:","`
	Topic      string   `env:"KAFKA_CUSTOMER_TOPIC" envDefault:"cliente-events"`
	EventType  string   `env:"CUSTOMER_EVENT" envDefault:"created"`
	CustomerID int64    `env:"CUSTOMER_ID,required"`
	Name       string   `env:"CUSTOMER_NAME"`
	Active     bool     `env:"CUSTOMER_ACTIVE" envDefault:"true"`
}

func main() {
	logging.Init("customer-feed", "info", os.Getenv("APP_ENV"))
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("customer feed failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := env.ParseAs[feedConfig]()
	if err != nil {
		return err
	}

	feed := events.NewCustomerFeed(cfg.Brokers, cfg.Topic)
	defer feed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	e := domain.CustomerEvent{
		EventType:  domain.CustomerEventType(cfg.EventType),
		CustomerID: cfg.CustomerID,
		Name:       cfg.Name,
		Active:     cfg.Active,
		OccurredAt: time.Now().UTC(),
	}
	if err := feed.Publish(ctx, e); err != nil {
		return err
	}

	slog.Info("customer event published", "customer_id", e.CustomerID, "event_type", e.EventType, "topic", cfg.Topic)
	return nil
}
