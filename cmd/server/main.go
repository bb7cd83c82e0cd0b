package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"

	"github.com/ruralpay/investflow/docs"
	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/config"
	"github.com/ruralpay/investflow/internal/database"
	"github.com/ruralpay/investflow/internal/handlers"
	"github.com/ruralpay/investflow/internal/logger"
	"github.com/ruralpay/investflow/internal/scheduler"
	"github.com/ruralpay/investflow/internal/services"
)

// @title Investflow API
// @version 1.0
// @description Wallet investment onboarding: eKYC-style onboarding, fund selection, confirmation and simulated processing.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	config.Load()
	fileErr := config.ReadFile()

	serverCfg := config.GetServerConfig()
	logger.Init("investflow", serverCfg.LogLevel)
	if fileErr != nil {
		logger.Info().Err(fileErr).Msg("Config file not found, using defaults")
	}

	flowCfg := config.LoadFlowConfig()

	docs.SwaggerInfo.Title = "Investflow API"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + serverCfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.Real()
	banks := services.NewBankService()
	deps := services.Deps{
		Config:     flowCfg,
		Scheduler:  sched,
		Banks:      banks,
		Provider:   services.NewSimulatedBankProvider(services.NewProbabilityDecider(flowCfg.VerificationSuccessRate, time.Now().UnixNano())),
		References: services.NewRandomReference(flowCfg.ReferencePrefix),
		Audit:      audit.NewLogger(),
	}

	var redisClient *redis.Client
	if serverCfg.PromptStore == "redis" {
		redisClient = database.InitRedis(ctx)
	}
	if redisClient != nil {
		defer redisClient.Close()
		deps.Prompts = services.NewRedisPromptStore(redisClient, 0)
		logger.Info().Msg("Prompt dismissals stored in Redis")
	} else {
		deps.Prompts = services.NewFilePromptStore(serverCfg.PromptStoreDir)
		logger.Info().Str("dir", serverCfg.PromptStoreDir).Msg("Prompt dismissals stored on disk")
	}

	if serverCfg.LedgerBackend == "postgres" {
		db, ledger := openLedger(ctx)
		defer db.Close()

		deps.Ledger = func(sessionID string, store *services.SessionStore) services.Ledger {
			account := services.WalletAccountID(sessionID)
			wallet := services.NewWalletLedger(ledger, account)

			openCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			balance, err := ledger.OpenWallet(openCtx, account, store.Balance())
			if err != nil {
				logger.Error().Err(err).Str("account", account).Msg("Failed to open wallet account")
				return wallet
			}
			store.SetBalance(balance)
			return wallet
		}
	}

	registry := services.NewRegistry(deps)
	defer registry.CloseAll()

	server := &http.Server{
		Addr:         ":" + serverCfg.Port,
		Handler:      handlers.NewRouter(registry, banks),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped")
}

func openLedger(ctx context.Context) (*sql.DB, *services.DoubleLedgerService) {
	db, err := database.InitDB(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}

	ledger := services.NewDoubleLedgerService(db)

	viper.SetDefault("ledger.cashback_float", int64(100_000_000))
	platform := map[string]int64{
		ledger.CustodyAccount():  0,
		ledger.CashbackAccount(): viper.GetInt64("ledger.cashback_float"),
	}
	if err := database.Migrate(ctx, db, platform); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate ledger schema")
	}
	return db, ledger
}
