package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/logging"
	"github.com/josh-kwaku/accounting-service/internal/service"
)

type movementService interface {
	CreateMovement(ctx context.Context, req service.CreateMovementRequest) (*domain.Movement, error)
	GetMovement(ctx context.Context, id uuid.UUID) (*domain.Movement, error)
	ListMovements(ctx context.Context, q service.ListMovementsQuery) ([]domain.Movement, error)
	ListAccountMovements(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error)
	UpdateMovementType(ctx context.Context, id uuid.UUID, movementType domain.MovementType) (*domain.Movement, error)
}

type accountLookup interface {
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
}

type MovementHandler struct {
	movements movementService
	accounts  accountLookup
}

func NewMovementHandler(movements movementService, accounts accountLookup) *MovementHandler {
	return &MovementHandler{movements: movements, accounts: accounts}
}

// createMovementRequest addresses the account by id or by number.
type createMovementRequest struct {
	AccountID     string           `json:"account_id"`
	AccountNumber string           `json:"account_number"`
	MovementType  string           `json:"movement_type"`
	Amount        *decimal.Decimal `json:"amount"`
}

func (r createMovementRequest) Validate() []FieldError {
	var errs []FieldError

	if r.AccountID == "" && r.AccountNumber == "" {
		errs = append(errs, FieldError{Field: "account_id", Message: "account_id or account_number required"})
	} else if r.AccountID != "" {
		if _, err := uuid.Parse(r.AccountID); err != nil {
			errs = append(errs, FieldError{Field: "account_id", Message: "must be a UUID"})
		}
	}

	if r.MovementType == "" {
		errs = append(errs, FieldError{Field: "movement_type", Message: "required"})
	} else if !domain.MovementType(r.MovementType).IsValid() {
		errs = append(errs, FieldError{Field: "movement_type", Message: "must be Deposit or Withdrawal"})
	}

	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if !domain.ValidAmount(*r.Amount) {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0, at most " + domain.MaxMoney.StringFixed(domain.MoneyScale) + ", with at most 2 decimal places"})
	}

	return errs
}

type updateMovementRequest struct {
	MovementType string `json:"movement_type"`
}

func (r updateMovementRequest) Validate() []FieldError {
	if r.MovementType == "" {
		return []FieldError{{Field: "movement_type", Message: "required"}}
	}
	if !domain.MovementType(r.MovementType).IsValid() {
		return []FieldError{{Field: "movement_type", Message: "must be Deposit or Withdrawal"}}
	}
	return nil
}

type movementDTO struct {
	ID           uuid.UUID `json:"id"`
	OccurredAt   time.Time `json:"occurred_at"`
	MovementType string    `json:"movement_type"`
	Amount       string    `json:"amount"`
	Balance      string    `json:"balance"`
	AccountID    uuid.UUID `json:"account_id"`
	CustomerID   int64     `json:"customer_id"`
}

func toMovementDTO(m *domain.Movement) movementDTO {
	return movementDTO{
		ID:           m.ID,
		OccurredAt:   m.OccurredAt,
		MovementType: string(m.MovementType),
		Amount:       m.Amount.StringFixed(domain.MoneyScale),
		Balance:      m.Balance.StringFixed(domain.MoneyScale),
		AccountID:    m.AccountID,
		CustomerID:   m.CustomerID,
	}
}

func toMovementDTOs(movements []domain.Movement) []movementDTO {
	dtos := make([]movementDTO, len(movements))
	for i := range movements {
		dtos[i] = toMovementDTO(&movements[i])
	}
	return dtos
}

func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var accountID uuid.UUID
	if req.AccountID != "" {
		accountID = uuid.MustParse(req.AccountID)
	} else {
		account, err := h.accounts.GetAccountByNumber(r.Context(), req.AccountNumber)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		accountID = account.ID
	}

	m, err := h.movements.CreateMovement(r.Context(), service.CreateMovementRequest{
		AccountID:    accountID,
		MovementType: domain.MovementType(req.MovementType),
		Amount:       *req.Amount,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("movement rejected", "account_id", accountID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMovementDTO(m))
}

func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrMovementNotFound, nil)
		return
	}

	m, err := h.movements.GetMovement(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toMovementDTO(m))
}

func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	movements, err := h.movements.ListMovements(r.Context(), service.ListMovementsQuery{})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list movements", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toMovementDTOs(movements))
}

// ListByCustomer serves /movements/client/{id} with optional accountId, start
// and end filters.
func (h *MovementHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || customerID <= 0 {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	query := service.ListMovementsQuery{CustomerID: &customerID}
	var fields []FieldError

	q := r.URL.Query()
	if raw := q.Get("accountId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fields = append(fields, FieldError{Field: "accountId", Message: "must be a UUID"})
		} else {
			query.AccountID = &id
		}
	}
	if raw := q.Get("start"); raw != "" {
		t, err := parseRangeBound(raw, false)
		if err != nil {
			fields = append(fields, FieldError{Field: "start", Message: err.Error()})
		} else {
			query.From = &t
		}
	}
	if raw := q.Get("end"); raw != "" {
		t, err := parseRangeBound(raw, true)
		if err != nil {
			fields = append(fields, FieldError{Field: "end", Message: err.Error()})
		} else {
			query.To = &t
		}
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	movements, err := h.movements.ListMovements(r.Context(), query)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toMovementDTOs(movements))
}

func (h *MovementHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	movements, err := h.movements.ListAccountMovements(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toMovementDTOs(movements))
}

func (h *MovementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrMovementNotFound, nil)
		return
	}

	var req updateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.movements.UpdateMovementType(r.Context(), id, domain.MovementType(req.MovementType))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toMovementDTO(m))
}
