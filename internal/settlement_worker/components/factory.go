// Package components assembles the settlement worker's processing chain.
package components

import (
	"log/slog"

	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/outbox"
	"github.com/miniguru-commerce/internal/settlement_worker/outbox_poller"
	"github.com/miniguru-commerce/internal/settlement_worker/service"
)

// CreateSettler wraps the retrying processor in a worker pool, falling back to
// the bare processor when the pool cannot be created.
func CreateSettler(payments service.RequestSettler, logger *slog.Logger, cfg *config.Config) service.Settler {
	processor := service.NewSettlementProcessor(
		payments,
		service.SettlementConfig{MaxAttempts: cfg.WorkerPool.MaxSettleAttempts},
		logger.With("component", "settlement_processor"),
	)

	pooled, err := service.NewWorkerPoolSettler(
		processor,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool, falling back to inline settlement", "error", err)
		return processor
	}

	logger.Info("Created worker pool settler", "pool_size", cfg.WorkerPool.Size, "max_attempts", cfg.WorkerPool.MaxSettleAttempts)
	return pooled
}

// CreateOutboxPoller wires the history projection
func CreateOutboxPoller(cfg *config.Config, outboxRepo outbox.Repository, ledgerRepo ledger.Repository, logger *slog.Logger) *outbox_poller.Poller {
	publisher := outbox_poller.NewLedgerPublisher(outboxRepo, ledgerRepo, logger.With("component", "ledger_publisher"))
	return outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, publisher, logger.With("component", "outbox_poller"))
}
