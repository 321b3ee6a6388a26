package cmd

import (
	"context"
	"fmt"
	"time"

	"raffler/announce"
	"raffler/api"
	"raffler/automation"
	"raffler/config"
	"raffler/database"
	"raffler/events"
	"raffler/oracle"
	"raffler/repository"
	"raffler/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting raffler...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize the oracle and services
	randomnessOracle, err := oracle.NewLocal(cfg.OracleBlockTime)
	if err != nil {
		return fmt.Errorf("failed to initialize oracle: %w", err)
	}
	defer randomnessOracle.Close()

	raffleService := service.NewRaffleService(uowFactory, randomnessOracle, cfg)
	ledgerService := service.NewLedgerService(uowFactory)

	// The oracle delivers callbacks straight into the raffle service
	randomnessOracle.SetFulfiller(raffleService)
	log.Info("Services initialized")

	// Initialize winner announcements if configured
	if cfg.AnnouncementsEnabled {
		announcer, err := announce.New(announce.Config{
			Token:     cfg.DiscordToken,
			ChannelID: cfg.DiscordChannelID,
		}, eventBus)
		if err != nil {
			return fmt.Errorf("failed to initialize announcer: %w", err)
		}
		defer func() {
			if err := announcer.Close(); err != nil {
				log.WithError(err).Error("Error closing announcer")
			}
		}()
		log.Info("Discord announcer initialized")
	}

	// Start the upkeep poller
	poller := automation.NewPoller(raffleService, cfg.PollInterval)
	if err := poller.Start(); err != nil {
		return fmt.Errorf("failed to start upkeep poller: %w", err)
	}
	defer poller.Stop()

	// Start the HTTP server
	server := api.NewServer(cfg.HTTPAddr, raffleService, ledgerService)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.WithField("environment", cfg.Environment).Info("Raffler is running")

	// Wait for shutdown or server failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	return nil
}
