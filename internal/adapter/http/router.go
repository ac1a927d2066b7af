package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/flowdist/flowdistributor/internal/adapter/http/handler"
	"github.com/flowdist/flowdistributor/internal/adapter/http/middleware"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	PurchaseHandler  *handler.PurchaseHandler
	SaleHandler      *handler.SaleHandler
	TransferHandler  *handler.TransferHandler
	FXHandler        *handler.FXHandler
	MovementHandler  *handler.MovementHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log.Logger))
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts (bóvedas)
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/movements", cfg.MovementHandler.ListByAccount)
			r.Post("/{id}/reconcile", cfg.LedgerHandler.ReconcileAccount)
		})

		// Purchase orders
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.PurchaseHandler.Receive)
			r.Get("/{id}", cfg.PurchaseHandler.Get)
			r.Post("/{id}/payments", cfg.PurchaseHandler.Pay)
		})

		// Distributors
		r.Route("/distributors", func(r chi.Router) {
			r.Get("/", cfg.PurchaseHandler.ListDistributors)
			r.Get("/{id}", cfg.PurchaseHandler.GetDistributor)
			r.Get("/{id}/orders", cfg.PurchaseHandler.ListByDistributor)
		})

		// Sales
		r.Route("/sales", func(r chi.Router) {
			r.Post("/", cfg.SaleHandler.Record)
			r.Get("/", cfg.SaleHandler.List)
			r.Post("/quote", cfg.SaleHandler.Quote)
			r.Get("/{id}", cfg.SaleHandler.Get)
			r.Post("/{id}/payments", cfg.SaleHandler.Pay)
		})

		// Clients
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", cfg.SaleHandler.ListClients)
			r.Get("/{id}", cfg.SaleHandler.GetClient)
			r.Get("/{id}/sales", cfg.SaleHandler.ListByClient)
		})

		// Stock
		r.Get("/stock/{id}", cfg.PurchaseHandler.GetStock)

		// Transfers between same-currency accounts
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Post("/batch", cfg.TransferHandler.CreateBatch)
		})

		// Currency conversion
		r.Route("/fx", func(r chi.Router) {
			r.Post("/convert", cfg.FXHandler.Convert)
			r.Get("/quote", cfg.FXHandler.Quote)
		})

		// Ad-hoc movements
		r.Route("/movements", func(r chi.Router) {
			r.Post("/", cfg.MovementHandler.Record)
			r.Get("/{id}", cfg.MovementHandler.Get)
			r.Post("/{id}/void", cfg.MovementHandler.Void)
		})

		// Ledger-wide operations
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Post("/reconcile", cfg.LedgerHandler.ReconcileAll)
			r.Get("/report", cfg.LedgerHandler.Report)
		})
	})

	return r
}
