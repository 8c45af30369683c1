package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"arena-ledger/api"
	"arena-ledger/application"
	"arena-ledger/config"
	"arena-ledger/database"
	"arena-ledger/domain/interfaces"
	"arena-ledger/domain/services"
	"arena-ledger/infrastructure"
	"arena-ledger/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets the logrus formatter and level for the environment
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Run initializes and starts the settlement service
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting arena ledger...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Metrics disabled, failed to initialize provider")
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event publishing
	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
	}
	publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if natsClient != nil {
		if err := publisher.EnsureSettlementEventStream(); err != nil {
			log.WithError(err).Warn("Failed to ensure settlement event stream")
		}
	}

	// Committed events reach local handlers through the unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)
	infrastructure.RegisterLedgerMetrics(uowFactory)

	// Discord announcements are optional
	var (
		discord   *discordgo.Session
		announcer *infrastructure.DiscordAnnouncer
	)
	if cfg.DiscordToken != "" && cfg.AnnounceChannelID != "" {
		discord, err = discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			log.WithError(err).Warn("Settlement announcements disabled, failed to create Discord session")
		} else {
			announcer = infrastructure.NewDiscordAnnouncer(discord, cfg.AnnounceChannelID)
			announcer.Register(uowFactory)
			log.WithField("channel", cfg.AnnounceChannelID).Info("Settlement announcements enabled")
		}
	}

	// Initialize services
	games := services.NewGameRegistry(cfg.SupportedGames...)
	rewards := application.ReferralRewards{Referrer: cfg.ReferrerReward, Referee: cfg.RefereeReward}

	ledger := application.NewLedgerService(uowFactory, cfg.SettlementTimeout)
	matches := application.NewMatchService(uowFactory, games, cfg.SettlementTimeout)
	tournaments := application.NewTournamentService(uowFactory, games, cfg.SettlementTimeout)
	referrals := application.NewReferralService(uowFactory, rewards, cfg.SettlementTimeout)
	deposits := application.NewDepositService(uowFactory, referrals, cfg.SettlementTimeout)
	log.WithField("games", games.Games()).Info("Settlement services initialized")

	// Start background workers
	worker := application.NewTournamentSettlementWorker(tournaments, cfg.TournamentSweepInterval)
	stopWorker := worker.Start(ctx)

	// Start HTTP API
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.Services{
			Ledger:      ledger,
			Matches:     matches,
			Tournaments: tournaments,
			Referrals:   referrals,
			Deposits:    deposits,
		}, cfg.Environment),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for context cancellation or a server failure
	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Info("Shutting down arena ledger...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	stopWorker()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if announcer != nil {
		announcer.Wait()
	}
	if discord != nil {
		if err := discord.Close(); err != nil {
			log.WithError(err).Error("Error closing Discord session")
		}
	}
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return runErr
}

// CreditAccount applies an admin ledger credit without publishing events
func CreditAccount(ctx context.Context, req interfaces.LedgerRequest) (*interfaces.LedgerEntryResult, error) {
	cfg := config.Get()
	ConfigureLogging(cfg)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	return application.NewLedgerService(uowFactory, cfg.SettlementTimeout).Credit(ctx, req)
}
