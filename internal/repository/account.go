package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

const accountColumns = `id, account_number, account_type, opening_balance, current_balance,
	active, customer_id, created_at, updated_at`

const accountNumberConstraint = "accounts_account_number_key"

type AccountFilter struct {
	CustomerID    *int64
	ActiveOnly    bool
	AccountNumber string
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (
			id, account_number, account_type, opening_balance, current_balance,
			active, customer_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.AccountNumber, account.AccountType,
		account.OpeningBalance, account.CurrentBalance,
		account.Active, account.CustomerID, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, accountNumberConstraint) {
			return fmt.Errorf("Create: %w", domain.ErrAccountExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByNumber: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetByNumber: %w", err)
	}
	return a, nil
}

// NumberTaken reports whether another account (any id except excludeID) already
// uses number. Pass uuid.Nil to check against every account.
func (r *AccountRepository) NumberTaken(ctx context.Context, number string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1 AND id <> $2)`,
		number, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("NumberTaken: %w", err)
	}
	return taken, nil
}

func (r *AccountRepository) List(ctx context.Context, f AccountFilter) ([]domain.Account, error) {
	var (
		conds []string
		args  []any
	)
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.ActiveOnly {
		conds = append(conds, "active = TRUE")
	}
	if f.AccountNumber != "" {
		args = append(args, f.AccountNumber)
		conds = append(conds, fmt.Sprintf("account_number = $%d", len(args)))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, account_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Update(ctx context.Context, id uuid.UUID, upd domain.AccountUpdate, updatedAt time.Time) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE accounts
		SET account_number = $1, account_type = $2, customer_id = $3, active = $4, updated_at = $5
		WHERE id = $6
		RETURNING `+accountColumns,
		upd.AccountNumber, upd.AccountType, upd.CustomerID, upd.Active, updatedAt, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Update: %w", domain.ErrAccountNotFound)
		}
		if isUniqueViolation(err, accountNumberConstraint) {
			return nil, fmt.Errorf("Update: %w", domain.ErrAccountExists)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool, updatedAt time.Time) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE accounts SET active = $1, updated_at = $2 WHERE id = $3 RETURNING `+accountColumns,
		active, updatedAt, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("SetActive: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("SetActive: %w", err)
	}
	return a, nil
}

// GetForUpdate locks the account row until tx ends. Concurrent movements on the
// same account queue behind this lock.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, updatedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET current_balance = $1, updated_at = $2 WHERE id = $3`,
		newBalance, updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrAccountNotFound)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.AccountNumber, &a.AccountType,
		&a.OpeningBalance, &a.CurrentBalance,
		&a.Active, &a.CustomerID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
