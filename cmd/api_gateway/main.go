package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/miniguru-commerce/internal/api_gateway"
	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/data/mongo"
	"github.com/miniguru-commerce/internal/data/postgres"
	"github.com/miniguru-commerce/internal/data/redis"
	"github.com/miniguru-commerce/internal/logger"
	"github.com/miniguru-commerce/internal/platform/gateway/razorpay"
	"github.com/miniguru-commerce/internal/platform/messaging/producers"
	"github.com/miniguru-commerce/internal/platform/persistence"
	"github.com/miniguru-commerce/internal/platform/publisher/youtube"
	"github.com/miniguru-commerce/internal/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	// Applies pending migrations before connecting
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisClient, err := persistence.NewRedisClient(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Without the producer, failed verifications are reported but not retried
	var retries producers.MessagePublisher
	settlementProducer, err := producers.NewSettlementRequestProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Warn("Settlement retry producer unavailable, gateway failures will not be retried", "error", err)
	} else {
		retries = settlementProducer
	}

	videoPublisher, err := youtube.NewPublisher(appCtx, log.With("component", "youtube"), &cfg.YouTube, afero.NewOsFs())
	if err != nil {
		log.Error("Failed to initialize YouTube publisher", "error", err)
		os.Exit(1)
	}

	// Repositories
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	txnRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	productRepo := postgres.NewProductRepository(log, postgresDB)
	categoryRepo := postgres.NewCategoryRepository(log, postgresDB)
	orderRepo := postgres.NewOrderRepository(log, postgresDB)
	userRepo := postgres.NewUserRepository(log, postgresDB)

	historyRepo := mongo.NewLedgerRepository(log, mongoDB.Database())
	videoRepo := mongo.NewVideoRepository(log, mongoDB.Database())
	if err := historyRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure ledger indexes", "error", err)
		os.Exit(1)
	}
	if err := videoRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure video indexes", "error", err)
		os.Exit(1)
	}

	approvalLock := redis.NewApprovalLock(log, redisClient, cfg.ApprovalLockTTL())
	resetTokens := redis.NewResetTokenStore(log, redisClient)

	// Services
	ledgerService := service.NewLedgerService(log.With("service", "ledger"), postgresDB, walletRepo, txnRepo, outboxRepo, historyRepo)
	paymentService := service.NewPaymentService(
		log.With("service", "payment"),
		postgresDB,
		walletRepo,
		txnRepo,
		ledgerService,
		razorpay.NewClient(log.With("component", "razorpay"), &cfg.Razorpay),
		retries,
		cfg.Razorpay.Currency,
	)
	services := api_gateway.Services{
		Ledger:   ledgerService,
		Payments: paymentService,
		Orders:   service.NewOrderService(log.With("service", "order"), postgresDB, productRepo, orderRepo, ledgerService),
		Products: service.NewProductService(log.With("service", "product"), productRepo, categoryRepo),
		Videos:   service.NewVideoService(log.With("service", "video"), videoRepo, videoPublisher, approvalLock, afero.NewOsFs()),
		Resets: service.NewPasswordResetService(
			log.With("service", "password_reset"),
			userRepo,
			resetTokens,
			service.NewLogNotifier(log.With("component", "reset_notifier")),
			cfg.Auth.ResetTokenTTL,
		),
		Checks: map[string]api_gateway.HealthCheck{
			"postgres": postgresDB.Ping,
			"mongodb":  mongoDB.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	}

	server := api_gateway.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain in-flight requests before closing what they use
	shutdownErr := server.Stop(shutdownCtx)
	if shutdownErr != nil {
		log.Error("Error during server shutdown", "error", shutdownErr)
	}

	if settlementProducer != nil {
		if err := settlementProducer.Close(); err != nil {
			log.Error("Error closing Kafka producer", "error", err)
		}
	}
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
	}
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}
	postgresDB.Close()

	if serverErr != nil || shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
