package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

type accountMessage struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	AccountID      string    `json:"account_id"`
	AccountNumber  string    `json:"account_number"`
	AccountType    string    `json:"account_type"`
	OpeningBalance string    `json:"opening_balance"`
	CurrentBalance string    `json:"current_balance"`
	Active         bool      `json:"active"`
	CustomerID     int64     `json:"customer_id"`
}

type movementMessage struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	MovementID    string    `json:"movement_id"`
	MovementType  string    `json:"movement_type"`
	Amount        string    `json:"amount"`
	Balance       string    `json:"balance"`
	AccountID     string    `json:"account_id"`
	AccountNumber string    `json:"account_number"`
	CustomerID    int64     `json:"customer_id"`
	MovementDate  time.Time `json:"movement_date"`
}

// customerMessage mirrors the payload published by the customer service.
type customerMessage struct {
	EventType  string    `json:"eventType"`
	CustomerID int64     `json:"clienteId"`
	Name       string    `json:"nombre"`
	Active     *bool     `json:"estado"`
	Timestamp  time.Time `json:"timestamp"`
}

func encodeAccountEvent(e domain.AccountEvent) ([]byte, error) {
	a := e.Account
	return json.Marshal(accountMessage{
		EventID:        e.EventID.String(),
		EventType:      string(e.EventType),
		OccurredAt:     e.OccurredAt,
		AccountID:      a.ID.String(),
		AccountNumber:  a.AccountNumber,
		AccountType:    string(a.AccountType),
		OpeningBalance: a.OpeningBalance.StringFixed(domain.MoneyScale),
		CurrentBalance: a.CurrentBalance.StringFixed(domain.MoneyScale),
		Active:         a.Active,
		CustomerID:     a.CustomerID,
	})
}

func encodeMovementEvent(e domain.MovementEvent) ([]byte, error) {
	m := e.Movement
	return json.Marshal(movementMessage{
		EventID:       e.EventID.String(),
		EventType:     string(e.EventType),
		OccurredAt:    e.OccurredAt,
		MovementID:    m.ID.String(),
		MovementType:  string(m.MovementType),
		Amount:        m.Amount.StringFixed(domain.MoneyScale),
		Balance:       m.Balance.StringFixed(domain.MoneyScale),
		AccountID:     m.AccountID.String(),
		AccountNumber: e.AccountNumber,
		CustomerID:    m.CustomerID,
		MovementDate:  m.OccurredAt,
	})
}

// DecodeCustomerEvent parses the customer service payload. receivedAt stands
// in for a missing timestamp.
func DecodeCustomerEvent(data []byte, receivedAt time.Time) (*domain.CustomerEvent, error) {
	var msg customerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("DecodeCustomerEvent: %w", err)
	}
	if msg.CustomerID <= 0 {
		return nil, fmt.Errorf("DecodeCustomerEvent: missing clienteId")
	}

	eventType, ok := parseCustomerEventType(msg.EventType)
	if !ok {
		return nil, fmt.Errorf("DecodeCustomerEvent: unknown event type %q", msg.EventType)
	}

	active := eventType != domain.CustomerEventDeleted
	if msg.Active != nil && eventType != domain.CustomerEventDeleted {
		active = *msg.Active
	}

	occurredAt := msg.Timestamp
	if occurredAt.IsZero() {
		occurredAt = receivedAt
	}

	return &domain.CustomerEvent{
		EventType:  eventType,
		CustomerID: msg.CustomerID,
		Name:       strings.TrimSpace(msg.Name),
		Active:     active,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

func parseCustomerEventType(s string) (domain.CustomerEventType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CLIENTE_CREADO", "CUSTOMER_CREATED", "CREATED":
		return domain.CustomerEventCreated, true
	case "CLIENTE_ACTUALIZADO", "CUSTOMER_UPDATED", "UPDATED":
		return domain.CustomerEventUpdated, true
	case "CLIENTE_ELIMINADO", "CUSTOMER_DELETED", "DELETED":
		return domain.CustomerEventDeleted, true
	}
	return "", false
}

var customerWireTypes = map[domain.CustomerEventType]string{
	domain.CustomerEventCreated: "CLIENTE_CREADO",
	domain.CustomerEventUpdated: "CLIENTE_ACTUALIZADO",
	domain.CustomerEventDeleted: "CLIENTE_ELIMINADO",
}

func encodeCustomerEvent(e domain.CustomerEvent) ([]byte, error) {
	wireType, ok := customerWireTypes[e.EventType]
	if !ok {
		return nil, fmt.Errorf("encodeCustomerEvent: unknown event type %q", e.EventType)
	}
	active := e.Active
	return json.Marshal(customerMessage{
		EventType:  wireType,
		CustomerID: e.CustomerID,
		Name:       e.Name,
		Active:     &active,
		Timestamp:  e.OccurredAt.UTC(),
	})
}
