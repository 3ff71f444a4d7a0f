package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/repository"
)

type fakeAccounts struct {
	byID       map[uuid.UUID]*domain.Account
	lastFilter repository.AccountFilter
}

func newFakeAccounts(accounts ...*domain.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[uuid.UUID]*domain.Account{}}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) Create(_ context.Context, a *domain.Account) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	for _, a := range f.byID {
		if a.AccountNumber == number {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (f *fakeAccounts) NumberTaken(_ context.Context, number string, excludeID uuid.UUID) (bool, error) {
	for _, a := range f.byID {
		if a.AccountNumber == number && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) List(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	f.lastFilter = filter
	out := []domain.Account{}
	for _, a := range f.byID {
		if filter.CustomerID != nil && a.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ActiveOnly && !a.Active {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccounts) Update(_ context.Context, id uuid.UUID, upd domain.AccountUpdate, updatedAt time.Time) (*domain.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.AccountNumber = upd.AccountNumber
	a.AccountType = upd.AccountType
	a.CustomerID = upd.CustomerID
	a.Active = upd.Active
	a.UpdatedAt = updatedAt
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) SetActive(_ context.Context, id uuid.UUID, active bool, updatedAt time.Time) (*domain.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Active = active
	a.UpdatedAt = updatedAt
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetForUpdate(ctx context.Context, _ *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAccounts) UpdateBalance(_ context.Context, _ *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, updatedAt time.Time) error {
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.CurrentBalance = newBalance
	a.UpdatedAt = updatedAt
	return nil
}

type fakeMovements struct {
	byID      map[uuid.UUID]*domain.Movement
	createErr error
}

func newFakeMovements() *fakeMovements {
	return &fakeMovements{byID: map[uuid.UUID]*domain.Movement{}}
}

func (f *fakeMovements) Create(_ context.Context, _ *sql.Tx, m *domain.Movement) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMovements) GetByID(_ context.Context, id uuid.UUID) (*domain.Movement, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrMovementNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMovements) List(_ context.Context, filter repository.MovementFilter) ([]domain.Movement, error) {
	out := []domain.Movement{}
	for _, m := range f.byID {
		if filter.AccountID != nil && m.AccountID != *filter.AccountID {
			continue
		}
		if filter.CustomerID != nil && m.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMovements) SignedTotal(_ context.Context, accountID uuid.UUID) (decimal.Decimal, int, error) {
	total := decimal.Zero
	count := 0
	for _, m := range f.byID {
		if m.AccountID == accountID {
			total = total.Add(m.Signed())
			count++
		}
	}
	return total, count, nil
}

// fakeTx runs fn with a nil transaction. It cannot roll back, so tests that
// need atomicity run against a real database.
type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type recordingPublisher struct {
	mu        sync.Mutex
	accounts  []domain.AccountEvent
	movements []domain.MovementEvent
	err       error
}

func (p *recordingPublisher) PublishAccount(_ context.Context, e domain.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts = append(p.accounts, e)
	return p.err
}

func (p *recordingPublisher) PublishMovement(_ context.Context, e domain.MovementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.movements = append(p.movements, e)
	return p.err
}

var errBusDown = errors.New("bus down")

func testAccount(number, balance string, active bool) *domain.Account {
	b := decimal.RequireFromString(balance)
	return &domain.Account{
		ID:             uuid.New(),
		AccountNumber:  number,
		AccountType:    domain.AccountTypeSavings,
		OpeningBalance: b,
		CurrentBalance: b,
		Active:         active,
		CustomerID:     1,
	}
}
