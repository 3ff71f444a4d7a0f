package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/logging"
	"github.com/josh-kwaku/accounting-service/internal/repository"
)

type CreateAccountRequest struct {
	AccountNumber  string
	AccountType    domain.AccountType
	OpeningBalance decimal.Decimal
	CustomerID     int64
	// Active defaults to true when nil.
	Active *bool
}

type ListAccountsQuery struct {
	CustomerID    *int64
	ActiveOnly    bool
	AccountNumber string
}

type AccountService struct {
	accounts  accountRepository
	movements movementRepository
	events    EventPublisher
}

func NewAccountService(accounts accountRepository, movements movementRepository, events EventPublisher) *AccountService {
	return &AccountService{accounts: accounts, movements: movements, events: events}
}

func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	number := strings.TrimSpace(req.AccountNumber)
	if err := validateAccountFields(number, req.AccountType, req.CustomerID); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	if !domain.ValidBalance(req.OpeningBalance) {
		return nil, fmt.Errorf("CreateAccount: opening balance: %w", domain.ErrInvalidAmount)
	}

	taken, err := s.accounts.NumberTaken(ctx, number, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: check existing: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrAccountExists)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uuid.New(),
		AccountNumber:  number,
		AccountType:    req.AccountType,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		Active:         active,
		CustomerID:     req.CustomerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The unique constraint still guards the race between the check above and
	// this insert.
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"account_number", account.AccountNumber,
		"customer_id", account.CustomerID,
	)
	notifyAccount(ctx, s.events, domain.AccountEventCreated, account)

	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	account, err := s.accounts.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, fmt.Errorf("GetAccountByNumber: %w", err)
	}
	return account, nil
}

// ListAccounts applies the filters together. Listing by customer only returns
// that customer's active accounts.
func (s *AccountService) ListAccounts(ctx context.Context, q ListAccountsQuery) ([]domain.Account, error) {
	f := repository.AccountFilter{
		CustomerID:    q.CustomerID,
		ActiveOnly:    q.ActiveOnly || q.CustomerID != nil,
		AccountNumber: strings.TrimSpace(q.AccountNumber),
	}
	accounts, err := s.accounts.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, upd domain.AccountUpdate) (*domain.Account, error) {
	upd.AccountNumber = strings.TrimSpace(upd.AccountNumber)
	if err := validateAccountFields(upd.AccountNumber, upd.AccountType, upd.CustomerID); err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}

	existing, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}

	if existing.AccountNumber != upd.AccountNumber {
		taken, err := s.accounts.NumberTaken(ctx, upd.AccountNumber, id)
		if err != nil {
			return nil, fmt.Errorf("UpdateAccount: check existing: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("UpdateAccount: %w", domain.ErrAccountExists)
		}
	}

	account, err := s.accounts.Update(ctx, id, upd, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account updated", "account_id", id)
	notifyAccount(ctx, s.events, domain.AccountEventUpdated, account)

	return account, nil
}

// DeactivateAccount flags the account inactive. Accounts are never removed.
func (s *AccountService) DeactivateAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.SetActive(ctx, id, false, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("DeactivateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account deactivated", "account_id", id)
	notifyAccount(ctx, s.events, domain.AccountEventDeactivated, account)

	return account, nil
}

// Reconcile compares the stored balance with the balance derived from the
// opening balance and the movement ledger.
func (s *AccountService) Reconcile(ctx context.Context, id uuid.UUID) (*domain.Reconciliation, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Reconcile: %w", err)
	}

	total, count, err := s.movements.SignedTotal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Reconcile: %w", err)
	}

	rec := &domain.Reconciliation{
		AccountID:      id,
		OpeningBalance: account.OpeningBalance,
		StoredBalance:  account.CurrentBalance,
		DerivedBalance: account.OpeningBalance.Add(total),
		MovementCount:  count,
	}
	if !rec.Consistent() {
		logging.FromContext(ctx).Error("balance mismatch",
			"account_id", id,
			"stored", rec.StoredBalance.String(),
			"derived", rec.DerivedBalance.String(),
		)
	}
	return rec, nil
}

func validateAccountFields(number string, accountType domain.AccountType, customerID int64) error {
	if number == "" || len(number) > domain.MaxAccountNumberLength {
		return fmt.Errorf("account number: %w", domain.ErrInvalidRequest)
	}
	if !accountType.IsValid() {
		return fmt.Errorf("account type: %w", domain.ErrInvalidRequest)
	}
	if customerID <= 0 {
		return fmt.Errorf("customer id: %w", domain.ErrInvalidRequest)
	}
	return nil
}
