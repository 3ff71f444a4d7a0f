package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/logging"
	"github.com/josh-kwaku/accounting-service/internal/repository"
)

type CreateMovementRequest struct {
	AccountID    uuid.UUID
	MovementType domain.MovementType
	Amount       decimal.Decimal
}

type ListMovementsQuery struct {
	CustomerID *int64
	AccountID  *uuid.UUID
	From       *time.Time
	To         *time.Time
}

type MovementService struct {
	accounts  lockingAccountRepository
	movements movementRepository
	tx        txRunner
	events    EventPublisher
}

func NewMovementService(accounts lockingAccountRepository, movements movementRepository, tx txRunner, events EventPublisher) *MovementService {
	return &MovementService{accounts: accounts, movements: movements, tx: tx, events: events}
}

// CreateMovement records a deposit or withdrawal and moves the account balance
// in the same transaction. The account row stays locked until commit, so
// concurrent movements on one account apply one after another.
func (s *MovementService) CreateMovement(ctx context.Context, req CreateMovementRequest) (*domain.Movement, error) {
	log := logging.FromContext(ctx)

	if !req.MovementType.IsValid() {
		return nil, fmt.Errorf("CreateMovement: %w", domain.ErrInvalidMovementType)
	}
	if !domain.ValidAmount(req.Amount) {
		return nil, fmt.Errorf("CreateMovement: %w", domain.ErrInvalidAmount)
	}

	var (
		movement      *domain.Movement
		accountNumber string
	)
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
		if err != nil {
			return err
		}
		if !account.Active {
			return domain.ErrAccountInactive
		}

		newBalance, err := domain.ApplyMovement(account.CurrentBalance, req.MovementType, req.Amount)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		movement = &domain.Movement{
			ID:           uuid.New(),
			OccurredAt:   now,
			MovementType: req.MovementType,
			Amount:       req.Amount,
			Balance:      newBalance,
			AccountID:    account.ID,
			CustomerID:   account.CustomerID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.movements.Create(ctx, tx, movement); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
			return err
		}
		accountNumber = account.AccountNumber
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("CreateMovement: %w", err)
	}

	log.Info("movement recorded",
		"movement_id", movement.ID,
		"account_id", movement.AccountID,
		"movement_type", movement.MovementType,
		"amount", movement.Amount.StringFixed(domain.MoneyScale),
		"balance", movement.Balance.StringFixed(domain.MoneyScale),
	)
	notifyMovement(ctx, s.events, movement, accountNumber)

	return movement, nil
}

func (s *MovementService) GetMovement(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	m, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetMovement: %w", err)
	}
	return m, nil
}

func (s *MovementService) ListMovements(ctx context.Context, q ListMovementsQuery) ([]domain.Movement, error) {
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, fmt.Errorf("ListMovements: start after end: %w", domain.ErrInvalidRequest)
	}
	movements, err := s.movements.List(ctx, repository.MovementFilter{
		CustomerID: q.CustomerID,
		AccountID:  q.AccountID,
		From:       q.From,
		To:         q.To,
	})
	if err != nil {
		return nil, fmt.Errorf("ListMovements: %w", err)
	}
	return movements, nil
}

// ListAccountMovements returns an account's movements, newest first.
func (s *MovementService) ListAccountMovements(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("ListAccountMovements: %w", err)
	}
	movements, err := s.movements.List(ctx, repository.MovementFilter{AccountID: &accountID})
	if err != nil {
		return nil, fmt.Errorf("ListAccountMovements: %w", err)
	}
	return movements, nil
}

// UpdateMovementType accepts the type a movement already has and rejects any
// other. Amount and balance of a recorded movement never change.
func (s *MovementService) UpdateMovementType(ctx context.Context, id uuid.UUID, movementType domain.MovementType) (*domain.Movement, error) {
	if !movementType.IsValid() {
		return nil, fmt.Errorf("UpdateMovementType: %w", domain.ErrInvalidMovementType)
	}

	m, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateMovementType: %w", err)
	}
	if m.MovementType != movementType {
		logging.FromContext(ctx).Warn("movement type change rejected",
			"movement_id", id,
			"current", m.MovementType,
			"requested", movementType,
		)
		return nil, fmt.Errorf("UpdateMovementType: %w", domain.ErrMovementImmutable)
	}
	return m, nil
}
