package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/repository"
)

type accountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	NumberTaken(ctx context.Context, number string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, f repository.AccountFilter) ([]domain.Account, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.AccountUpdate, updatedAt time.Time) (*domain.Account, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, updatedAt time.Time) (*domain.Account, error)
}

type lockingAccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, updatedAt time.Time) error
}

type movementRepository interface {
	Create(ctx context.Context, tx *sql.Tx, m *domain.Movement) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error)
	List(ctx context.Context, f repository.MovementFilter) ([]domain.Movement, error)
	SignedTotal(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, int, error)
}

type customerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// txRunner scopes a unit of work to one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// EventPublisher announces committed changes. Implementations must not block
// the caller on delivery.
type EventPublisher interface {
	PublishAccount(ctx context.Context, e domain.AccountEvent) error
	PublishMovement(ctx context.Context, e domain.MovementEvent) error
}
