package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wanderlog/tripledger/internal/adapter/http/handler"
	"github.com/wanderlog/tripledger/internal/adapter/http/middleware"
	"github.com/wanderlog/tripledger/internal/infrastructure/auth"
	"github.com/wanderlog/tripledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ExpenseHandler    *handler.ExpenseHandler
	BudgetHandler     *handler.BudgetHandler
	BalanceHandler    *handler.BalanceHandler
	SettlementHandler *handler.SettlementHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	RateLimiter       *middleware.RateLimiter
	JWTManager        *auth.JWTManager
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.OptionalAuth(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Trip-scoped resources
		r.Route("/trips/{tripID}", func(r chi.Router) {
			r.Post("/expenses", cfg.ExpenseHandler.Post)
			r.Get("/expenses", cfg.ExpenseHandler.List)

			r.Put("/budgets", cfg.BudgetHandler.Set)
			r.Get("/budgets", cfg.BudgetHandler.Get)
			r.Get("/budgets/status", cfg.BudgetHandler.Status)

			r.Get("/balances", cfg.BalanceHandler.List)

			r.Get("/settlements", cfg.SettlementHandler.List)
			r.Post("/settlements", cfg.SettlementHandler.Record)
			r.Get("/settlements/plan", cfg.SettlementHandler.Plan)
		})

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/{id}", cfg.ExpenseHandler.Get)
			r.Patch("/{id}", cfg.ExpenseHandler.Update)
			r.Delete("/{id}", cfg.ExpenseHandler.Delete)
		})

		// Splits
		r.Put("/splits/{id}/status", cfg.ExpenseHandler.UpdateSplitStatus)

		// Settlements
		r.Get("/settlements/{id}", cfg.SettlementHandler.Get)
	})

	return r
}
