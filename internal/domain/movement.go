package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementTypeDeposit    MovementType = "Deposit"
	MovementTypeWithdrawal MovementType = "Withdrawal"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeDeposit, MovementTypeWithdrawal:
		return true
	}
	return false
}

// MoneyScale is the number of fraction digits stored for every amount.
const MoneyScale = 2

// MaxMoney is the largest amount or balance the NUMERIC(15,2) columns hold.
var MaxMoney = decimal.RequireFromString("9999999999999.99")

type Movement struct {
	ID           uuid.UUID
	OccurredAt   time.Time
	MovementType MovementType
	Amount       decimal.Decimal
	Balance      decimal.Decimal
	AccountID    uuid.UUID
	CustomerID   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Signed returns the amount with the sign it contributes to the account balance.
func (m Movement) Signed() decimal.Decimal {
	if m.MovementType == MovementTypeWithdrawal {
		return m.Amount.Neg()
	}
	return m.Amount
}

// ApplyMovement computes the balance that results from applying a movement of
// the given type and amount to current. Withdrawals may drain the balance to
// exactly zero but never below it.
func ApplyMovement(current decimal.Decimal, movementType MovementType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !ValidAmount(amount) {
		return decimal.Zero, ErrInvalidAmount
	}

	switch movementType {
	case MovementTypeWithdrawal:
		if current.LessThan(amount) {
			return decimal.Zero, ErrInsufficientFunds
		}
		return current.Sub(amount), nil
	case MovementTypeDeposit:
		next := current.Add(amount)
		if next.GreaterThan(MaxMoney) {
			return decimal.Zero, fmt.Errorf("balance would exceed %s: %w", MaxMoney.StringFixed(MoneyScale), ErrInvalidAmount)
		}
		return next, nil
	default:
		return decimal.Zero, ErrInvalidMovementType
	}
}

// ValidAmount reports whether amount is strictly positive, no larger than
// MaxMoney and carries no more than MoneyScale fraction digits.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && ValidBalance(amount)
}

// ValidBalance reports whether b fits a balance column: zero or positive, at
// most MaxMoney, MoneyScale fraction digits.
func ValidBalance(b decimal.Decimal) bool {
	return !b.IsNegative() && !b.GreaterThan(MaxMoney) && b.Equal(b.Truncate(MoneyScale))
}
