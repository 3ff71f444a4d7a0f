package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/logging"
)

// The notify helpers run after commit. A failed publish is logged and dropped:
// the committed write stands and the caller still gets a success.

func notifyAccount(ctx context.Context, events EventPublisher, eventType domain.AccountEventType, account *domain.Account) {
	if events == nil {
		return
	}
	err := events.PublishAccount(context.WithoutCancel(ctx), domain.AccountEvent{
		EventID:    uuid.New(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Account:    *account,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("failed to publish account event",
			"event_type", eventType,
			"account_id", account.ID,
			"error", err,
		)
	}
}

func notifyMovement(ctx context.Context, events EventPublisher, movement *domain.Movement, accountNumber string) {
	if events == nil {
		return
	}
	err := events.PublishMovement(context.WithoutCancel(ctx), domain.MovementEvent{
		EventID:       uuid.New(),
		EventType:     domain.MovementEventCreated,
		OccurredAt:    time.Now().UTC(),
		Movement:      *movement,
		AccountNumber: accountNumber,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("failed to publish movement event",
			"movement_id", movement.ID,
			"account_id", movement.AccountID,
			"error", err,
		)
	}
}
