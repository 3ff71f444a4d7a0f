package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountEventType string

const (
	AccountEventCreated     AccountEventType = "ACCOUNT_CREATED"
	AccountEventUpdated     AccountEventType = "ACCOUNT_UPDATED"
	AccountEventDeactivated AccountEventType = "ACCOUNT_DEACTIVATED"
)

type MovementEventType string

const (
	MovementEventCreated MovementEventType = "MOVEMENT_CREATED"
)

type AccountEvent struct {
	EventID    uuid.UUID
	EventType  AccountEventType
	OccurredAt time.Time
	Account    Account
}

type MovementEvent struct {
	EventID       uuid.UUID
	EventType     MovementEventType
	OccurredAt    time.Time
	Movement      Movement
	AccountNumber string
}

type CustomerEventType string

const (
	CustomerEventCreated CustomerEventType = "created"
	CustomerEventUpdated CustomerEventType = "updated"
	CustomerEventDeleted CustomerEventType = "deleted"
)

type CustomerEvent struct {
	EventType  CustomerEventType
	CustomerID int64
	Name       string
	Active     bool
	OccurredAt time.Time
}

// Customer is the directory row this event leaves behind.
func (e CustomerEvent) Customer() *Customer {
	return &Customer{
		ID:        e.CustomerID,
		Name:      e.Name,
		Active:    e.Active,
		UpdatedAt: e.OccurredAt,
	}
}
