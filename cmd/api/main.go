package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/josh-kwaku/accounting-service/api"
	"github.com/josh-kwaku/accounting-service/internal/config"
	"github.com/josh-kwaku/accounting-service/internal/events"
	"github.com/josh-kwaku/accounting-service/internal/handler"
	"github.com/josh-kwaku/accounting-service/internal/logging"
	"github.com/josh-kwaku/accounting-service/internal/repository"
	"github.com/josh-kwaku/accounting-service/internal/server"
	"github.com/josh-kwaku/accounting-service/internal/service"
	"github.com/josh-kwaku/accounting-service/migrations"
)

const version = "1.0.0"

type publisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("accounting api exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init("accounting-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := repository.Migrate(ctx, db, migrations.FS); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	accountRepo := repository.NewAccountRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	var (
		notifier     publisher
		readyChecks  map[string]handler.ReadinessCheck
		eventsLogger = logging.Component("events")
	)
	if cfg.EventsEnabled() {
		notifier = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAccountTopic, cfg.KafkaMovementTopic, eventsLogger)
		readyChecks = map[string]handler.ReadinessCheck{"events": events.BrokerCheck(cfg.KafkaBrokers)}
	} else {
		slog.Warn("no kafka brokers configured, events will only be logged")
		notifier = events.NewLogPublisher(eventsLogger)
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
	}()

	accounts := service.NewAccountService(accountRepo, movementRepo, notifier)
	movements := service.NewMovementService(accountRepo, movementRepo, repository.NewDB(db), notifier)
	reports := service.NewReportService(accountRepo, movementRepo, customerRepo)

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	handlers := server.Handlers{
		Accounts:  handler.NewAccountHandler(accounts),
		Movements: handler.NewMovementHandler(movements, accounts),
		Reports:   handler.NewReportHandler(reports),
		Health:    handler.NewHealthHandler(db, version, readyChecks),
		OpenAPI:   api.OpenAPI,
	}
	if cfg.CustomerWebhookSecret != "" {
		handlers.CustomerWebhook = handler.NewCustomerWebhookHandler(customerRepo, cfg.CustomerWebhookSecret)
	}

	router := server.NewRouter(handlers, server.RouterOptions{
		JWTSecret:   cfg.JWTSecret,
		Idempotency: idempotencyRepo,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx, fmt.Sprintf(":%d", cfg.Port), router)
	})

	janitor := service.NewIdempotencyJanitor(idempotencyRepo, logging.Component("idempotency-janitor"), cfg.IdempotencyCleanupInterval)
	g.Go(func() error {
		janitor.Start(gctx)
		return nil
	})

	if cfg.EventsEnabled() {
		consumer := events.NewCustomerConsumer(cfg.KafkaBrokers, cfg.KafkaCustomerTopic, cfg.KafkaConsumerGroup, customerRepo, logging.Component("customer-consumer"))
		g.Go(func() error {
			return consumer.Start(gctx)
		})
	}

	return g.Wait()
}
