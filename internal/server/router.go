package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/accounting-service/internal/handler"
	"github.com/josh-kwaku/accounting-service/internal/middleware"
)

type Handlers struct {
	Accounts  *handler.AccountHandler
	Movements *handler.MovementHandler
	Reports   *handler.ReportHandler
	Health    *handler.HealthHandler

	// CustomerWebhook is mounted only when set.
	CustomerWebhook *handler.CustomerWebhookHandler

	// OpenAPI is served at /docs when set.
	OpenAPI []byte
}

type RouterOptions struct {
	// JWTSecret turns on bearer-token auth when non-empty.
	JWTSecret   string
	Idempotency middleware.IdempotencyStore
}

func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Liveness)
	mux.HandleFunc("GET /health/ready", h.Health.Readiness)

	if len(h.OpenAPI) > 0 {
		mux.HandleFunc("GET /docs", handler.ServeDocs())
		mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeOpenAPI(h.OpenAPI))
	}

	mux.HandleFunc("POST /accounts", h.Accounts.Create)
	mux.HandleFunc("GET /accounts", h.Accounts.List)
	mux.HandleFunc("GET /accounts/number/{number}", h.Accounts.GetByNumber)
	mux.HandleFunc("GET /accounts/{id}", h.Accounts.Get)
	mux.HandleFunc("PUT /accounts/{id}", h.Accounts.Update)
	mux.HandleFunc("PATCH /accounts/{id}/deactivate", h.Accounts.Deactivate)
	mux.HandleFunc("GET /accounts/{id}/movements", h.Movements.ListByAccount)
	mux.HandleFunc("GET /accounts/{id}/reconciliation", h.Accounts.Reconcile)

	mux.HandleFunc("POST /movements", h.Movements.Create)
	mux.HandleFunc("GET /movements", h.Movements.List)
	mux.HandleFunc("GET /movements/{id}", h.Movements.Get)
	mux.HandleFunc("PUT /movements/{id}", h.Movements.Update)
	mux.HandleFunc("GET /movements/client/{id}", h.Movements.ListByCustomer)

	mux.HandleFunc("GET /reports", h.Reports.Statement)

	if h.CustomerWebhook != nil {
		mux.HandleFunc("POST /webhooks/customers", h.CustomerWebhook.Receive)
	}

	var root http.Handler = mux
	if opts.Idempotency != nil {
		root = middleware.Idempotency(opts.Idempotency)(root)
	}
	if opts.JWTSecret != "" {
		root = middleware.Auth(opts.JWTSecret)(root)
	}
	root = middleware.Recovery(root)
	root = middleware.Logging(root)
	root = middleware.Tracing(root)

	return otelhttp.NewHandler(root, "accounting-api")
}
