package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/events"
	"github.com/josh-kwaku/accounting-service/internal/logging"
)

type customerUpserter interface {
	Upsert(ctx context.Context, c *domain.Customer) error
}

// CustomerWebhookHandler accepts customer events pushed over HTTP, in the same
// payload the customer service puts on Kafka. Requests must carry an HMAC-SHA256
// signature of the body.
type CustomerWebhookHandler struct {
	customers customerUpserter
	secret    string
}

func NewCustomerWebhookHandler(customers customerUpserter, secret string) *CustomerWebhookHandler {
	return &CustomerWebhookHandler{customers: customers, secret: secret}
}

var ErrInvalidSignature = &AppError{http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature is invalid"}

func (h *CustomerWebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read webhook body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	sig := r.Header.Get("X-Webhook-Signature")
	if !verifyHMAC(body, sig, h.secret) {
		log.Warn("webhook signature verification failed")
		RespondAppError(w, ErrInvalidSignature, nil)
		return
	}

	event, err := events.DecodeCustomerEvent(body, time.Now().UTC())
	if err != nil {
		log.Warn("rejected customer webhook", "error", err)
		RespondAppError(w, ErrInvalidRequest, err.Error())
		return
	}

	if err := h.customers.Upsert(r.Context(), event.Customer()); err != nil {
		log.Error("failed to store customer", "customer_id", event.CustomerID, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	log.Info("customer webhook applied", "customer_id", event.CustomerID, "event_type", event.EventType)
	RespondSuccess(w, http.StatusOK, map[string]string{"status": "received"})
}

func verifyHMAC(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
