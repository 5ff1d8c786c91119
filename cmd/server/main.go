package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/wanderlog/tripledger/internal/adapter/http"
	"github.com/wanderlog/tripledger/internal/adapter/http/handler"
	"github.com/wanderlog/tripledger/internal/adapter/http/middleware"
	postgresRepo "github.com/wanderlog/tripledger/internal/adapter/repository/postgres"
	redisRepo "github.com/wanderlog/tripledger/internal/adapter/repository/redis"
	"github.com/wanderlog/tripledger/internal/infrastructure/auth"
	"github.com/wanderlog/tripledger/internal/infrastructure/config"
	"github.com/wanderlog/tripledger/internal/infrastructure/currency"
	"github.com/wanderlog/tripledger/internal/infrastructure/eventpublisher"
	"github.com/wanderlog/tripledger/internal/infrastructure/logger"
	"github.com/wanderlog/tripledger/internal/infrastructure/logging"
	"github.com/wanderlog/tripledger/internal/infrastructure/metrics"
	"github.com/wanderlog/tripledger/internal/infrastructure/postgres"
	"github.com/wanderlog/tripledger/internal/infrastructure/redis"
	"github.com/wanderlog/tripledger/internal/infrastructure/tripdirectory"
	"github.com/wanderlog/tripledger/internal/usecase"
)

func main() {
	// Load .env when present; environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zlog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = zlog

	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Collaborators: real services when URLs are configured, static
	// single-trip fallbacks otherwise.
	trips := newTripDirectory(cfg)
	if cfg.TripDirectoryURL == "" {
		log.Warn().Strs("members", cfg.StaticTripMembers).Msg("using static trip directory")
	}

	converter := newCurrencyConverter(cfg)
	if cfg.ConverterURL == "" {
		log.Warn().Msg("using identity currency converter")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	splitRepo := postgresRepo.NewSplitRepository(pool)
	budgetRepo := postgresRepo.NewBudgetRepository(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(slogger.Logger)

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, expenseRepo, splitRepo, budgetRepo, outboxRepo, trips, converter, cache, idGen).
		WithRetrier(retrier)
	budgetUC := usecase.NewBudgetUseCase(budgetRepo, idGen)
	balanceUC := usecase.NewBalanceUseCase(balanceRepo, trips, cache)
	settlementUC := usecase.NewSettlementUseCase(txManager, settlementRepo, outboxRepo, balanceUC, trips, converter, idGen).
		WithRetrier(retrier)

	// Initialize handlers
	expenseHandler := handler.NewExpenseHandler(ledgerUC)
	budgetHandler := handler.NewBudgetHandler(budgetUC)
	balanceHandler := handler.NewBalanceHandler(balanceUC)
	settlementHandler := handler.NewSettlementHandler(settlementUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ExpenseHandler:    expenseHandler,
		BudgetHandler:     budgetHandler,
		BalanceHandler:    balanceHandler,
		SettlementHandler: settlementHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		RateLimiter:       middleware.NewRateLimiter(100, 200),
		JWTManager:        jwtManager,
		Logger:            zlog,
	})

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slogger.Logger),
		Logger:     slogger.Logger,
		Metrics:    metrics.New(),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newTripDirectory(cfg *config.Config) usecase.TripDirectory {
	if cfg.TripDirectoryURL != "" {
		return tripdirectory.NewHTTPDirectory(cfg.TripDirectoryURL)
	}

	return tripdirectory.NewStaticDirectory(cfg.StaticTripMembers, cfg.StaticBaseCurrency)
}

func newCurrencyConverter(cfg *config.Config) usecase.CurrencyConverter {
	if cfg.ConverterURL != "" {
		return currency.NewHTTPConverter(cfg.ConverterURL)
	}

	return currency.NewStaticConverter(nil)
}
