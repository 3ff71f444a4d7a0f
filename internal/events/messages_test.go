package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

func TestEncodeMovementEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := domain.Movement{
		ID:           uuid.New(),
		OccurredAt:   now,
		MovementType: domain.MovementTypeWithdrawal,
		Amount:       decimal.RequireFromString("575"),
		Balance:      decimal.RequireFromString("1425"),
		AccountID:    uuid.New(),
		CustomerID:   7,
	}

	data, err := encodeMovementEvent(domain.MovementEvent{
		EventID:       uuid.New(),
		EventType:     domain.MovementEventCreated,
		OccurredAt:    now,
		Movement:      m,
		AccountNumber: "478758",
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "MOVEMENT_CREATED", got["event_type"])
	assert.Equal(t, "575.00", got["amount"])
	assert.Equal(t, "1425.00", got["balance"])
	assert.Equal(t, "Withdrawal", got["movement_type"])
	assert.Equal(t, "478758", got["account_number"])
	assert.Equal(t, float64(7), got["customer_id"])
}

func TestEncodeAccountEvent(t *testing.T) {
	a := domain.Account{
		ID:             uuid.New(),
		AccountNumber:  "225487",
		AccountType:    domain.AccountTypeChecking,
		OpeningBalance: decimal.RequireFromString("100"),
		CurrentBalance: decimal.RequireFromString("700.5"),
		Active:         false,
		CustomerID:     2,
	}

	data, err := encodeAccountEvent(domain.AccountEvent{
		EventID:    uuid.New(),
		EventType:  domain.AccountEventDeactivated,
		OccurredAt: time.Now().UTC(),
		Account:    a,
	})
	require.NoError(t, err)

	var got accountMessage
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ACCOUNT_DEACTIVATED", got.EventType)
	assert.Equal(t, a.ID.String(), got.AccountID)
	assert.Equal(t, "100.00", got.OpeningBalance)
	assert.Equal(t, "700.50", got.CurrentBalance)
	assert.False(t, got.Active)
}

func TestDecodeCustomerEvent(t *testing.T) {
	received := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		payload    string
		wantErr    bool
		wantType   domain.CustomerEventType
		wantActive bool
		wantName   string
	}{
		{
			name:       "created in spanish",
			payload:    `{"eventType":"CLIENTE_CREADO","clienteId":1,"nombre":" Jose Lema ","estado":true}`,
			wantType:   domain.CustomerEventCreated,
			wantActive: true,
			wantName:   "Jose Lema",
		},
		{
			name:       "updated to inactive",
			payload:    `{"eventType":"updated","clienteId":1,"nombre":"Jose Lema","estado":false}`,
			wantType:   domain.CustomerEventUpdated,
			wantActive: false,
			wantName:   "Jose Lema",
		},
		{
			name:       "deleted is always inactive",
			payload:    `{"eventType":"CLIENTE_ELIMINADO","clienteId":1,"estado":true}`,
			wantType:   domain.CustomerEventDeleted,
			wantActive: false,
		},
		{name: "unknown type", payload: `{"eventType":"CLIENTE_FUSIONADO","clienteId":1}`, wantErr: true},
		{name: "missing id", payload: `{"eventType":"CLIENTE_CREADO"}`, wantErr: true},
		{name: "not json", payload: `nope`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeCustomerEvent([]byte(tc.payload), received)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, got.EventType)
			assert.Equal(t, int64(1), got.CustomerID)
			assert.Equal(t, tc.wantActive, got.Active)
			assert.Equal(t, tc.wantName, got.Name)
			assert.Equal(t, received, got.OccurredAt)
		})
	}
}

func TestEncodeCustomerEvent_RoundTripsThroughConsumerFormat(t *testing.T) {
	at := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
	in := domain.CustomerEvent{
		EventType:  domain.CustomerEventUpdated,
		CustomerID: 7,
		Name:       "Marianela Montalvo",
		Active:     true,
		OccurredAt: at,
	}

	data, err := encodeCustomerEvent(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"eventType":"CLIENTE_ACTUALIZADO"`)

	out, err := DecodeCustomerEvent(data, time.Now())
	require.NoError(t, err)
	assert.Equal(t, in, *out)

	_, err = encodeCustomerEvent(domain.CustomerEvent{EventType: "merged", CustomerID: 1})
	require.Error(t, err)
}
