package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrMovementNotFound    = errors.New("movement not found")
	ErrAccountExists       = errors.New("account number already exists")
	ErrAccountInactive     = errors.New("account inactive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount must be greater than zero, at most 9999999999999.99, with at most two decimals")
	ErrInvalidMovementType = errors.New("movement type must be Deposit or Withdrawal")
	ErrMovementImmutable   = errors.New("movement type cannot be changed once recorded")
	ErrInvalidRequest      = errors.New("invalid request")
)
