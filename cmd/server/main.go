package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/flowdist/flowdistributor/internal/adapter/http"
	"github.com/flowdist/flowdistributor/internal/adapter/http/handler"
	"github.com/flowdist/flowdistributor/internal/adapter/http/middleware"
	"github.com/flowdist/flowdistributor/internal/adapter/rates"
	postgresRepo "github.com/flowdist/flowdistributor/internal/adapter/repository/postgres"
	redisRepo "github.com/flowdist/flowdistributor/internal/adapter/repository/redis"
	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/config"
	"github.com/flowdist/flowdistributor/internal/infrastructure/eventpublisher"
	"github.com/flowdist/flowdistributor/internal/infrastructure/logging"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
	"github.com/flowdist/flowdistributor/internal/infrastructure/postgres"
	"github.com/flowdist/flowdistributor/internal/infrastructure/redis"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// slog logger for components that take *slog.Logger
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

	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	accountRepo := postgresRepo.NewAccountRepository(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	orderRepo := postgresRepo.NewPurchaseOrderRepository(pool)
	saleRepo := postgresRepo.NewSaleRepository(pool)
	stockRepo := postgresRepo.NewStockRepository(pool)
	distributorRepo := postgresRepo.NewDistributorRepository(pool)
	clientRepo := postgresRepo.NewClientRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Exchange rates
	pairs, err := rates.ParsePairs(cfg.ExchangeRates)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse exchange rates")
	}
	rateProvider := rates.NewCachedProvider(rates.NewStaticProvider(pairs), cache, cfg.RateCacheTTL)

	// Sale posting accounts
	saleAccounts := domain.SaleAccounts{
		PrimaryID: cfg.PrimaryAccountID,
		FreightID: cfg.FreightAccountID,
		ProfitID:  cfg.ProfitAccountID,
	}

	// Use cases
	accountUC := usecase.NewAccountUseCase(txManager, retrier, accountRepo, outboxRepo, idGen, m)
	purchaseUC := usecase.NewPurchaseOrderUseCase(txManager, retrier, orderRepo, stockRepo, distributorRepo, accountRepo, movementRepo, outboxRepo, idGen, m)
	saleUC := usecase.NewSaleUseCase(txManager, retrier, saleRepo, orderRepo, stockRepo, clientRepo, accountRepo, movementRepo, outboxRepo, idGen, saleAccounts, m)
	transferUC := usecase.NewTransferUseCase(txManager, retrier, accountRepo, movementRepo, outboxRepo, idGen, m)
	fxUC := usecase.NewFXUseCase(txManager, retrier, accountRepo, movementRepo, outboxRepo, rateProvider, idGen, m)
	movementUC := usecase.NewMovementUseCase(txManager, retrier, accountRepo, movementRepo, outboxRepo, idGen, m)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, accountRepo, movementRepo, ledgerRepo, m)

	// Rate limiting
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go rateLimiter.StartCleanup(limiterCtx, cfg.RateLimitCleanupInterval, cfg.RateLimitMaxIdle)

	// Handlers
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		PurchaseHandler:  handler.NewPurchaseHandler(purchaseUC),
		SaleHandler:      handler.NewSaleHandler(saleUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		FXHandler:        handler.NewFXHandler(fxUC),
		MovementHandler:  handler.NewMovementHandler(movementUC),
		LedgerHandler:    handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
	})

	// Outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slogger.Logger),
		Logger:     slogger.Logger,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
