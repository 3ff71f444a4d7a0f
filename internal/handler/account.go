package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/accounting-service/internal/domain"
	"github.com/josh-kwaku/accounting-service/internal/logging"
	"github.com/josh-kwaku/accounting-service/internal/service"
)

type accountService interface {
	CreateAccount(ctx context.Context, req service.CreateAccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListAccounts(ctx context.Context, q service.ListAccountsQuery) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, upd domain.AccountUpdate) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	Reconcile(ctx context.Context, id uuid.UUID) (*domain.Reconciliation, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	AccountNumber  string           `json:"account_number"`
	AccountType    string           `json:"account_type"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	CustomerID     int64            `json:"customer_id"`
	Active         *bool            `json:"active"`
}

func (r createAccountRequest) Validate() []FieldError {
	errs := validateAccountCommon(r.AccountNumber, r.AccountType, r.CustomerID)

	if r.OpeningBalance == nil {
		errs = append(errs, FieldError{Field: "opening_balance", Message: "required"})
	} else if r.OpeningBalance.IsNegative() {
		errs = append(errs, FieldError{Field: "opening_balance", Message: "must not be negative"})
	} else if r.OpeningBalance.GreaterThan(domain.MaxMoney) {
		errs = append(errs, FieldError{Field: "opening_balance", Message: "must not exceed " + domain.MaxMoney.StringFixed(domain.MoneyScale)})
	} else if !r.OpeningBalance.Equal(r.OpeningBalance.Truncate(domain.MoneyScale)) {
		errs = append(errs, FieldError{Field: "opening_balance", Message: "at most 2 decimal places"})
	}

	return errs
}

type updateAccountRequest struct {
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	CustomerID    int64  `json:"customer_id"`
	Active        *bool  `json:"active"`
}

func (r updateAccountRequest) Validate() []FieldError {
	errs := validateAccountCommon(r.AccountNumber, r.AccountType, r.CustomerID)
	if r.Active == nil {
		errs = append(errs, FieldError{Field: "active", Message: "required"})
	}
	return errs
}

func validateAccountCommon(number, accountType string, customerID int64) []FieldError {
	var errs []FieldError

	number = strings.TrimSpace(number)
	if number == "" {
		errs = append(errs, FieldError{Field: "account_number", Message: "required"})
	} else if len(number) > domain.MaxAccountNumberLength {
		errs = append(errs, FieldError{Field: "account_number", Message: "at most 20 characters"})
	}

	if accountType == "" {
		errs = append(errs, FieldError{Field: "account_type", Message: "required"})
	} else if !domain.AccountType(accountType).IsValid() {
		errs = append(errs, FieldError{Field: "account_type", Message: "must be Savings or Checking"})
	}

	if customerID <= 0 {
		errs = append(errs, FieldError{Field: "customer_id", Message: "must be a positive id"})
	}

	return errs
}

type accountDTO struct {
	ID             uuid.UUID `json:"id"`
	AccountNumber  string    `json:"account_number"`
	AccountType    string    `json:"account_type"`
	OpeningBalance string    `json:"opening_balance"`
	CurrentBalance string    `json:"current_balance"`
	Active         bool      `json:"active"`
	CustomerID     int64     `json:"customer_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:             a.ID,
		AccountNumber:  a.AccountNumber,
		AccountType:    string(a.AccountType),
		OpeningBalance: a.OpeningBalance.StringFixed(domain.MoneyScale),
		CurrentBalance: a.CurrentBalance.StringFixed(domain.MoneyScale),
		Active:         a.Active,
		CustomerID:     a.CustomerID,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type reconciliationDTO struct {
	AccountID      uuid.UUID `json:"account_id"`
	OpeningBalance string    `json:"opening_balance"`
	StoredBalance  string    `json:"stored_balance"`
	DerivedBalance string    `json:"derived_balance"`
	MovementCount  int       `json:"movement_count"`
	Consistent     bool      `json:"consistent"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), service.CreateAccountRequest{
		AccountNumber:  req.AccountNumber,
		AccountType:    domain.AccountType(req.AccountType),
		OpeningBalance: *req.OpeningBalance,
		CustomerID:     req.CustomerID,
		Active:         req.Active,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccountByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

// List accepts clienteId, activas and numeroCuenta as optional filters.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var query service.ListAccountsQuery

	if raw := q.Get("clienteId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			RespondValidationError(w, []FieldError{{Field: "clienteId", Message: "must be a positive id"}})
			return
		}
		query.CustomerID = &id
	}
	if raw := q.Get("activas"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "activas", Message: "must be true or false"}})
			return
		}
		query.ActiveOnly = active
	}
	query.AccountNumber = q.Get("numeroCuenta")

	accounts, err := h.accounts.ListAccounts(r.Context(), query)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.UpdateAccount(r.Context(), id, domain.AccountUpdate{
		AccountNumber: req.AccountNumber,
		AccountType:   domain.AccountType(req.AccountType),
		CustomerID:    req.CustomerID,
		Active:        *req.Active,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update account", "account_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.DeactivateAccount(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to deactivate account", "account_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	rec, err := h.accounts.Reconcile(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, reconciliationDTO{
		AccountID:      rec.AccountID,
		OpeningBalance: rec.OpeningBalance.StringFixed(domain.MoneyScale),
		StoredBalance:  rec.StoredBalance.StringFixed(domain.MoneyScale),
		DerivedBalance: rec.DerivedBalance.StringFixed(domain.MoneyScale),
		MovementCount:  rec.MovementCount,
		Consistent:     rec.Consistent(),
	})
}

// accountIDFromPath writes the error response itself when the id is malformed.
func accountIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrAccountNotFound, nil)
		return uuid.Nil, false
	}
	return id, true
}
