package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/accounting-service/internal/domain"
)

const testWebhookSecret = "test-secret-key"

type mockCustomerStore struct {
	stored *domain.Customer
	err    error
}

func (m *mockCustomerStore) Upsert(_ context.Context, c *domain.Customer) error {
	m.stored = c
	return m.err
}

func signPayload(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

const validCustomerBody = `{"eventType":"CLIENTE_CREADO","clienteId":7,"nombre":"Jose Lema","estado":true,"timestamp":"2024-02-10T08:00:00Z"}`

func TestVerifyHMAC(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		signature string
		secret    string
		want      bool
	}{
		{
			name:      "valid signature",
			body:      `{"clienteId":1}`,
			signature: signPayload(`{"clienteId":1}`, testWebhookSecret),
			secret:    testWebhookSecret,
			want:      true,
		},
		{
			name:      "wrong signature",
			body:      `{"clienteId":1}`,
			signature: "deadbeef",
			secret:    testWebhookSecret,
			want:      false,
		},
		{
			name:      "empty signature",
			body:      `{"clienteId":1}`,
			signature: "",
			secret:    testWebhookSecret,
			want:      false,
		},
		{
			name:      "wrong secret",
			body:      `{"clienteId":1}`,
			signature: signPayload(`{"clienteId":1}`, "other-secret"),
			secret:    testWebhookSecret,
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := verifyHMAC([]byte(tc.body), tc.signature, tc.secret)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCustomerWebhook_Receive(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupSig   func(body string) string
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid signed event",
			body:       validCustomerBody,
			setupSig:   func(body string) string { return signPayload(body, testWebhookSecret) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing signature header",
			body:       validCustomerBody,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
		},
		{
			name:       "invalid HMAC signature",
			body:       validCustomerBody,
			setupSig:   func(_ string) string { return "deadbeefdeadbeef" },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
		},
		{
			name:       "invalid JSON body",
			body:       "not-json",
			setupSig:   func(body string) string { return signPayload(body, testWebhookSecret) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "unknown event type",
			body:       `{"eventType":"CLIENTE_FUSIONADO","clienteId":7}`,
			setupSig:   func(body string) string { return signPayload(body, testWebhookSecret) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "store error returns 500",
			body:       validCustomerBody,
			setupSig:   func(body string) string { return signPayload(body, testWebhookSecret) },
			storeErr:   fmt.Errorf("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockCustomerStore{err: tc.storeErr}
			h := NewCustomerWebhookHandler(store, testWebhookSecret)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/customers", strings.NewReader(tc.body))
			if tc.setupSig != nil {
				req.Header.Set("X-Webhook-Signature", tc.setupSig(tc.body))
			}
			rr := httptest.NewRecorder()

			h.Receive(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

			if tc.wantCode == "" {
				assert.True(t, resp.Success)
			} else {
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestCustomerWebhook_StoresDecodedCustomer(t *testing.T) {
	store := &mockCustomerStore{}
	h := NewCustomerWebhookHandler(store, testWebhookSecret)

	body := `{"eventType":"CLIENTE_ELIMINADO","clienteId":7,"nombre":"Jose Lema","estado":true}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/customers", strings.NewReader(body))
	req.Header.Set("X-Webhook-Signature", signPayload(body, testWebhookSecret))
	rr := httptest.NewRecorder()

	h.Receive(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, store.stored)
	assert.Equal(t, int64(7), store.stored.ID)
	assert.False(t, store.stored.Active)
	assert.False(t, store.stored.UpdatedAt.IsZero())
}
