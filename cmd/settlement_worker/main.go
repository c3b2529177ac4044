package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/data/mongo"
	"github.com/miniguru-commerce/internal/data/postgres"
	"github.com/miniguru-commerce/internal/logger"
	"github.com/miniguru-commerce/internal/platform/gateway/razorpay"
	"github.com/miniguru-commerce/internal/platform/messaging/consumers"
	"github.com/miniguru-commerce/internal/platform/messaging/producers"
	"github.com/miniguru-commerce/internal/platform/persistence"
	commerce "github.com/miniguru-commerce/internal/service"
	"github.com/miniguru-commerce/internal/settlement_worker/components"
	"github.com/miniguru-commerce/internal/settlement_worker/consumer"
	"github.com/miniguru-commerce/internal/settlement_worker/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("settlement_worker")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

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

	// A nil *DLQProducer must not reach the handler as a non-nil interface
	var deadLetters producers.DeadLetterPublisher
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	txnRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	historyRepo := mongo.NewLedgerRepository(log, mongoDB.Database())
	if err := historyRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure ledger indexes", "error", err)
		os.Exit(1)
	}

	ledgerService := commerce.NewLedgerService(log.With("service", "ledger"), postgresDB, walletRepo, txnRepo, outboxRepo, historyRepo)
	// The worker is the retry path, so it never re-enqueues
	paymentService := commerce.NewPaymentService(
		log.With("service", "payment"),
		postgresDB,
		walletRepo,
		txnRepo,
		ledgerService,
		razorpay.NewClient(log.With("component", "razorpay"), &cfg.Razorpay),
		nil,
		cfg.Razorpay.Currency,
	)

	settler := components.CreateSettler(paymentService, log, cfg)
	poller := components.CreateOutboxPoller(cfg, outboxRepo, historyRepo, log)
	handler := consumer.NewSettlementEventHandler(log.With("component", "settlement_handler"), settler, deadLetters)
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	if err := kafkaConsumer.Subscribe(appCtx, handler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to settlement requests", "error", err)
		cancelAppCtx()
		wg.Wait()
		os.Exit(1)
	}

	log.Info("Settlement worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()
	wg.Wait()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if pooled, ok := settler.(*service.WorkerPoolSettler); ok {
		pooled.Shutdown()
	}
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ producer", "error", err)
		}
	}
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}
	postgresDB.Close()

	log.Info("Settlement worker stopped")
}
