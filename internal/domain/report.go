package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StatementReport struct {
	CustomerID   int64
	CustomerName string
	Start        time.Time
	End          time.Time
	Accounts     []StatementAccount
	TotalBalance decimal.Decimal
}

type StatementAccount struct {
	AccountID      uuid.UUID
	AccountNumber  string
	AccountType    AccountType
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Active         bool
	Movements      []Movement
}

// IsEmpty reports whether the customer had no active accounts.
func (r *StatementReport) IsEmpty() bool {
	return len(r.Accounts) == 0
}

type Reconciliation struct {
	AccountID      uuid.UUID
	OpeningBalance decimal.Decimal
	StoredBalance  decimal.Decimal
	DerivedBalance decimal.Decimal
	MovementCount  int
}

func (r Reconciliation) Consistent() bool {
	return r.StoredBalance.Equal(r.DerivedBalance)
}
