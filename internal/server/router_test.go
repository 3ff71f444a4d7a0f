package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/accounting-service/api"
	"github.com/josh-kwaku/accounting-service/internal/auth"
	"github.com/josh-kwaku/accounting-service/internal/handler"
	"github.com/josh-kwaku/accounting-service/internal/repository"
	"github.com/josh-kwaku/accounting-service/internal/server"
	"github.com/josh-kwaku/accounting-service/internal/service"
	"github.com/josh-kwaku/accounting-service/internal/testutil"
)

const testSecret = "router-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) (int, envelope, http.Header) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env, resp.Header
}

func setupServer(t *testing.T) *apiClient {
	t.Helper()
	db := testutil.SetupTestDB(t)

	accountRepo := repository.NewAccountRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	accounts := service.NewAccountService(accountRepo, movementRepo, nil)
	movements := service.NewMovementService(accountRepo, movementRepo, repository.NewDB(db), nil)
	reports := service.NewReportService(accountRepo, movementRepo, repository.NewCustomerRepository(db))

	h := server.NewRouter(server.Handlers{
		Accounts:  handler.NewAccountHandler(accounts),
		Movements: handler.NewMovementHandler(movements, accounts),
		Reports:   handler.NewReportHandler(reports),
		Health:    handler.NewHealthHandler(db, "test", nil),
		OpenAPI:   api.OpenAPI,
	}, server.RouterOptions{
		JWTSecret:   testSecret,
		Idempotency: repository.NewIdempotencyRepository(db),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	token, err := auth.GenerateToken("teller-01", "", testSecret, time.Hour)
	require.NoError(t, err)
	return &apiClient{t: t, base: srv.URL, token: token}
}

func TestAPI_AccountAndMovementFlow(t *testing.T) {
	c := setupServer(t)

	status, env, _ := c.do(http.MethodPost, "/accounts", map[string]any{
		"account_number":  "478758",
		"account_type":    "Savings",
		"opening_balance": "2000.00",
		"customer_id":     1,
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var account struct {
		ID             string `json:"id"`
		CurrentBalance string `json:"current_balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &account))
	assert.Equal(t, "2000.00", account.CurrentBalance)

	status, env, _ = c.do(http.MethodPost, "/accounts", map[string]any{
		"account_number":  "478758",
		"account_type":    "Checking",
		"opening_balance": "0",
		"customer_id":     2,
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ACCOUNT_ALREADY_EXISTS", env.Error.Code)

	status, env, _ = c.do(http.MethodPost, "/movements", map[string]any{
		"account_id":    account.ID,
		"movement_type": "Withdrawal",
		"amount":        "575.00",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var movement struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &movement))
	assert.Equal(t, "1425.00", movement.Balance)

	status, env, _ = c.do(http.MethodPost, "/movements", map[string]any{
		"account_number": "478758",
		"movement_type":  "Withdrawal",
		"amount":         "5000",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", env.Error.Code)

	status, env, _ = c.do(http.MethodGet, "/accounts/"+account.ID+"/reconciliation", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var rec struct {
		Consistent bool `json:"consistent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.True(t, rec.Consistent)

	status, _, _ = c.do(http.MethodPatch, "/accounts/"+account.ID+"/deactivate", nil, nil)
	require.Equal(t, http.StatusOK, status)

	status, env, _ = c.do(http.MethodPost, "/movements", map[string]any{
		"account_id":    account.ID,
		"movement_type": "Deposit",
		"amount":        "1",
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ACCOUNT_INACTIVE", env.Error.Code)
}

func TestAPI_IdempotentMovement(t *testing.T) {
	c := setupServer(t)

	status, env, _ := c.do(http.MethodPost, "/accounts", map[string]any{
		"account_number":  "225487",
		"account_type":    "Checking",
		"opening_balance": "100",
		"customer_id":     2,
	}, nil)
	require.Equal(t, http.StatusCreated, status)
	var account struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &account))

	body := map[string]any{"account_id": account.ID, "movement_type": "Deposit", "amount": "600"}
	headers := map[string]string{"Idempotency-Key": "deposit-1"}

	status, _, _ = c.do(http.MethodPost, "/movements", body, headers)
	require.Equal(t, http.StatusCreated, status)
	status, _, replayHeaders := c.do(http.MethodPost, "/movements", body, headers)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "true", replayHeaders.Get("X-Idempotent-Replayed"))

	status, env, _ = c.do(http.MethodGet, "/accounts/"+account.ID, nil, nil)
	require.Equal(t, http.StatusOK, status)
	var got struct {
		CurrentBalance string `json:"current_balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "700.00", got.CurrentBalance)
}

func TestAPI_RequiresToken(t *testing.T) {
	c := setupServer(t)
	c.token = ""

	status, env, _ := c.do(http.MethodGet, "/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", env.Error.Code)

	status, _, _ = c.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = c.do(http.MethodGet, "/docs/openapi.yaml", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_EmptyReport(t *testing.T) {
	c := setupServer(t)

	status, env, _ := c.do(http.MethodGet, "/reports?customer=99&start=2024-01-01&end=2024-12-31", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var report struct {
		CustomerID   int64  `json:"customer_id"`
		Accounts     []any  `json:"accounts"`
		TotalBalance string `json:"total_balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, int64(99), report.CustomerID)
	assert.Empty(t, report.Accounts)
	assert.NotNil(t, report.Accounts)
	assert.Equal(t, "0.00", report.TotalBalance)
}
