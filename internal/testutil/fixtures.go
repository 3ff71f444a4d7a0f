package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

func SeedCustomer(t *testing.T, db *sql.DB, id int64, name string) *domain.Customer {
	t.Helper()

	c := &domain.Customer{ID: id, Name: name, Active: true, UpdatedAt: time.Now().UTC()}
	_, err := db.Exec(
		`INSERT INTO customers (id, name, active, updated_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Active, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed customer %d: %v", id, err)
	}
	return c
}

func SeedAccount(t *testing.T, db *sql.DB, customerID int64, number, openingBalance string, active bool) *domain.Account {
	t.Helper()

	opening := decimal.RequireFromString(openingBalance)
	now := time.Now().UTC()
	a := &domain.Account{
		ID:             uuid.New(),
		AccountNumber:  number,
		AccountType:    domain.AccountTypeSavings,
		OpeningBalance: opening,
		CurrentBalance: opening,
		Active:         active,
		CustomerID:     customerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, account_number, account_type, opening_balance, current_balance, active, customer_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.AccountNumber, a.AccountType, a.OpeningBalance, a.CurrentBalance,
		a.Active, a.CustomerID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT current_balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountMovements(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM movements WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count movements for account %s: %v", accountID, err)
	}
	return count
}

func CountAccounts(t *testing.T, db *sql.DB, number string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE account_number = $1`, number).Scan(&count)
	if err != nil {
		t.Fatalf("count accounts %s: %v", number, err)
	}
	return count
}
