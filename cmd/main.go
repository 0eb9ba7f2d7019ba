// Command presale serves the presale deposit API.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/talentpad/presale/internal/app"
	"github.com/talentpad/presale/internal/config"
	"github.com/talentpad/presale/internal/db"
	"github.com/talentpad/presale/internal/db/repos"
	"github.com/talentpad/presale/internal/events"
	"github.com/talentpad/presale/internal/ledger"
	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel)

	database, err := db.New(cfg.DBOptions())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	ledgerClient, err := ledger.NewSolanaClient(ledger.SolanaOptions{
		Endpoint:   cfg.Solana.RPCURL,
		Commitment: cfg.Solana.Commitment,
		RPS:        cfg.Solana.RPS,
		Burst:      cfg.Solana.Burst,
	})
	if err != nil {
		logger.Fatalf("Failed to create Solana client: %v", err)
	}

	// Create repositories
	talentRepo := repos.NewTalentRepository(database)
	presaleRepo := repos.NewPresaleRepository(database)
	positionRepo := repos.NewPositionRepository(database)
	transactionRepo := repos.NewTransactionRepository(database)
	depositRepo := repos.NewDepositRepository(database)

	// Create services
	talentService := services.NewTalentService(talentRepo)
	presaleService := services.NewPresaleService(presaleRepo, talentRepo, positionRepo, transactionRepo)
	positionService := services.NewPositionService(positionRepo, presaleRepo)
	depositService := services.NewDepositService(
		presaleRepo,
		talentRepo,
		positionRepo,
		transactionRepo,
		depositRepo,
		ledgerClient,
		services.DepositOptions{
			FeeEstimateLamports: cfg.Deposit.FeeEstimateLamports,
			ToleranceLamports:   cfg.Deposit.ToleranceLamports,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscribeEvents(presaleService)
	events.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go services.LaunchFinalizer(ctx, &wg, presaleService, cfg.FinalizerInterval)

	server := app.NewApp(app.Options{CORSAllowOrigins: cfg.CORSAllowOrigins}, app.Services{
		Talent:   talentService,
		Presale:  presaleService,
		Position: positionService,
		Deposit:  depositService,
	})

	go func() {
		logger.InfoWithFields("Starting server", logger.Fields{
			"addr":       cfg.Addr(),
			"rpc":        cfg.Solana.RPCURL,
			"commitment": cfg.Solana.Commitment,
		})
		if err := server.Listen(cfg.Addr()); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	cancel()
	wg.Wait()

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// subscribeEvents registers the handlers reacting to domain events
func subscribeEvents(presaleService *services.Presale) {
	events.Subscribe(events.EventDepositRecorded, presaleService.HardCapWatcher())
	events.Subscribe(events.EventPresaleFinalized, func(_ context.Context, e events.Event) error {
		logger.DebugWithFields("Finalization event", logger.Fields{
			"presale_id": e.PresaleID,
			"outcome":    e.Outcome,
		})
		return nil
	})
}
