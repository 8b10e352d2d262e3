package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gearlane-auction-engine/internal/adapters/broadcaster"
	"gearlane-auction-engine/internal/adapters/db"
	"gearlane-auction-engine/internal/adapters/httpapi"
	"gearlane-auction-engine/internal/adapters/monitor"
	"gearlane-auction-engine/internal/adapters/redis"
	"gearlane-auction-engine/internal/adapters/ws"
	"gearlane-auction-engine/internal/app"
	"gearlane-auction-engine/internal/config"
	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/pricing"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Gearlane Auction Engine...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	log.Info().Msg("Database connection established")

	// Create repositories
	repoFactory := db.NewRepositoryFactory(dbConn)
	auctionRepo := repoFactory.GetAuctionRepository()
	lotRepo := repoFactory.GetLotRepository()
	bidRepo := repoFactory.GetBidRepository()
	winnerRepo := repoFactory.GetWinnerRepository()
	vehicleRepo := repoFactory.GetVehicleRepository()
	userRepo := repoFactory.GetUserRepository()

	log.Info().Msg("Database repositories initialized")

	// Create Redis client
	redisClient := redis.NewClient(cfg)
	if err := redis.PingRedis(redisClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	// Create Redis broadcaster
	redisBroadcaster := broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})
	log.Info().Msg("Redis broadcaster initialized")

	// Engine wiring shared by every service
	engineClock := clock.NewClock()
	locks := app.NewLockRegistry()
	policy := pricing.NewPolicy(pricing.DefaultSteps, pricing.DefaultTopIncrement)
	resolver := bidding.NewResolver(policy, nil)
	validation := bidding.ValidationConfig{
		Policy:           policy,
		ProxyCeiling:     cfg.Engine.ProxyMaxCeiling,
		RateLimitWindow:  cfg.Engine.BidRateWindow,
		RateLimitMaxBids: cfg.Engine.BidRateMaxBids,
	}

	// Create business services
	auctionService := app.NewAuctionService(app.AuctionServiceParams{
		AuctionRepo:  auctionRepo,
		LotRepo:      lotRepo,
		BidRepo:      bidRepo,
		WinnerRepo:   winnerRepo,
		UserRepo:     userRepo,
		VehicleRepo:  vehicleRepo,
		Broadcaster:  redisBroadcaster,
		Locks:        locks,
		Clock:        engineClock,
		TimerDefault: cfg.Engine.LotTimerSeconds,
		PaymentDue:   cfg.Engine.PaymentDue,
		Logger:       log.Logger,
	})
	bidService := app.NewBidService(app.BidServiceParams{
		BidRepo:     bidRepo,
		LotRepo:     lotRepo,
		AuctionRepo: auctionRepo,
		UserRepo:    userRepo,
		VehicleRepo: vehicleRepo,
		Broadcaster: redisBroadcaster,
		Resolver:    resolver,
		Validation:  validation,
		Locks:       locks,
		Clock:       engineClock,
		Logger:      log.Logger,
	})
	winnerService := app.NewWinnerService(app.WinnerServiceParams{
		WinnerRepo:  winnerRepo,
		LotRepo:     lotRepo,
		BidRepo:     bidRepo,
		Broadcaster: redisBroadcaster,
		Locks:       locks,
		Clock:       engineClock,
		Logger:      log.Logger,
	})

	log.Info().Msg("Business services initialized")

	// Create expiration monitor
	expirationMonitor := monitor.NewExpirationMonitor(monitor.ExpirationMonitorParams{
		AuctionRepo:    auctionRepo,
		LotRepo:        lotRepo,
		AuctionService: auctionService,
		Clock:          engineClock,
		PollInterval:   cfg.Engine.MonitorPollInterval,
		Logger:         log.Logger,
	})

	expirationMonitor.Start()
	log.Info().Msg("Expiration monitor started")

	// REST admin API
	apiHandler := httpapi.NewHandler(httpapi.HandlerParams{
		AuctionService: auctionService,
		BidService:     bidService,
		WinnerService:  winnerService,
		Logger:         log.Logger,
	})

	server := ws.NewServer(ws.ServerParams{
		Config:      cfg,
		BidService:  bidService,
		Broadcaster: redisBroadcaster,
		APIHandler:  apiHandler.Router(),
		Logger:      log.Logger,
	})

	log.Info().Msg("Server initialized")

	// Start server
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start server")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop expiration monitor
	expirationMonitor.Stop()
	log.Info().Msg("Expiration monitor stopped")

	// Stop server
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping server")
	}

	log.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		// JSON format (default)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Console format for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global logger
	zerolog.DefaultContextLogger = &log.Logger
}
