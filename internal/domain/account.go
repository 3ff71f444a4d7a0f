package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeSavings  AccountType = "Savings"
	AccountTypeChecking AccountType = "Checking"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking:
		return true
	}
	return false
}

const MaxAccountNumberLength = 20

type Account struct {
	ID             uuid.UUID
	AccountNumber  string
	AccountType    AccountType
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Active         bool
	CustomerID     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AccountUpdate holds the fields that may change after creation. Balances only
// change through movements.
type AccountUpdate struct {
	AccountNumber string
	AccountType   AccountType
	CustomerID    int64
	Active        bool
}
