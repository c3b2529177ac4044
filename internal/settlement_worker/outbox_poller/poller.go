package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/domain/outbox"
	"github.com/miniguru-commerce/internal/domain/shared"
)

// Poller projects committed wallet transactions into the ledger history. Any
// number of pollers may run; each message is claimed by one at a time, and a
// failed message becomes claimable again once its lease runs out.
type Poller struct {
	outboxRepo  outbox.Repository
	publisher   LedgerPublisher
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
	lease       time.Duration
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher LedgerPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:  outboxRepo,
		publisher:   publisher,
		logger:      logger,
		interval:    cfg.PollingInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxRetryAttempts,
		lease:       cfg.ClaimLease,
	}
}

// Start polls until ctx is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"interval", p.interval.String(),
		"batch_size", p.batchSize,
		"max_attempts", p.maxAttempts,
		"lease", p.lease.String(),
	)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.projectBatch(ctx); err != nil {
				p.logger.Error("Outbox batch failed", "error", err)
			}
		}
	}
}

// projectBatch claims one batch and publishes it. Per-message failures are
// recorded on the message and do not fail the batch.
func (p *Poller) projectBatch(ctx context.Context) error {
	messages, err := p.outboxRepo.ClaimPending(ctx, p.batchSize, p.lease)
	if err != nil {
		return fmt.Errorf("claim outbox batch: %w", err)
	}
	if len(messages) > 0 {
		p.logger.Debug("Claimed outbox messages", "count", len(messages))
	}

	for _, msg := range messages {
		if ctx.Err() != nil {
			// unfinished claims expire with the lease
			return nil
		}
		logger := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID.String())

		pubErr := p.publisher.PublishToLedger(ctx, msg)
		if pubErr == nil {
			continue
		}

		status, err := p.outboxRepo.RecordFailure(ctx, msg.ID, p.maxAttempts)
		switch {
		case err != nil:
			logger.Error("Ledger projection failed and the failure could not be recorded", "error", pubErr, "record_error", err)
		case status == shared.OutboxStatusFailedToPublish:
			logger.Warn("Ledger projection parked after max attempts", "attempts", msg.Attempts+1, "error", pubErr)
		default:
			logger.Error("Ledger projection failed, will retry after lease", "attempts", msg.Attempts+1, "error", pubErr)
		}
	}
	return nil
}
