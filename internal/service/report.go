package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/logging"
	"github.com/josh-kwaku/accounting-service/internal/repository"
)

type reportAccountRepository interface {
	List(ctx context.Context, f repository.AccountFilter) ([]domain.Account, error)
}

type reportMovementRepository interface {
	List(ctx context.Context, f repository.MovementFilter) ([]domain.Movement, error)
}

type ReportService struct {
	accounts  reportAccountRepository
	movements reportMovementRepository
	customers customerRepository
}

func NewReportService(accounts reportAccountRepository, movements reportMovementRepository, customers customerRepository) *ReportService {
	return &ReportService{accounts: accounts, movements: movements, customers: customers}
}

// GenerateStatement builds the customer's statement for [start, end]. A
// customer without active accounts gets an empty report, not an error.
func (s *ReportService) GenerateStatement(ctx context.Context, customerID int64, start, end time.Time) (*domain.StatementReport, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("GenerateStatement: customer id: %w", domain.ErrInvalidRequest)
	}
	if start.After(end) {
		return nil, fmt.Errorf("GenerateStatement: start after end: %w", domain.ErrInvalidRequest)
	}

	report := &domain.StatementReport{
		CustomerID:   customerID,
		CustomerName: s.customerName(ctx, customerID),
		Start:        start,
		End:          end,
		Accounts:     []domain.StatementAccount{},
		TotalBalance: decimal.Zero,
	}

	accounts, err := s.accounts.List(ctx, repository.AccountFilter{CustomerID: &customerID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("GenerateStatement: accounts: %w", err)
	}
	if len(accounts) == 0 {
		return report, nil
	}

	movements, err := s.movements.List(ctx, repository.MovementFilter{
		CustomerID: &customerID,
		From:       &start,
		To:         &end,
	})
	if err != nil {
		return nil, fmt.Errorf("GenerateStatement: movements: %w", err)
	}

	byAccount := make(map[uuid.UUID][]domain.Movement, len(accounts))
	for _, m := range movements {
		byAccount[m.AccountID] = append(byAccount[m.AccountID], m)
	}

	for _, a := range accounts {
		accountMovements := byAccount[a.ID]
		if accountMovements == nil {
			accountMovements = []domain.Movement{}
		}
		report.Accounts = append(report.Accounts, domain.StatementAccount{
			AccountID:      a.ID,
			AccountNumber:  a.AccountNumber,
			AccountType:    a.AccountType,
			OpeningBalance: a.OpeningBalance,
			CurrentBalance: a.CurrentBalance,
			Active:         a.Active,
			Movements:      accountMovements,
		})
		report.TotalBalance = report.TotalBalance.Add(a.CurrentBalance)
	}

	return report, nil
}

// customerName is best effort. Reports still render before the directory has
// heard of the customer.
func (s *ReportService) customerName(ctx context.Context, id int64) string {
	if s.customers == nil {
		return ""
	}
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(ctx).Warn("customer lookup failed", "customer_id", id, "error", err)
		}
		return ""
	}
	return c.Name
}
