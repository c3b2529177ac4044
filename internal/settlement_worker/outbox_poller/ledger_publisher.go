package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/outbox"
	"github.com/miniguru-commerce/internal/domain/shared"
)

// LedgerPublisher projects outbox messages into the ledger history
type LedgerPublisher interface {
	PublishToLedger(ctx context.Context, message *outbox.Message) error
}

type LedgerPublisherImpl struct {
	outboxRepo outbox.Repository
	ledgerRepo ledger.Repository
	logger     *slog.Logger
	now        func() time.Time
}

func NewLedgerPublisher(
	outboxRepo outbox.Repository,
	ledgerRepo ledger.Repository,
	logger *slog.Logger,
) LedgerPublisher {
	return &LedgerPublisherImpl{
		outboxRepo: outboxRepo,
		ledgerRepo: ledgerRepo,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PublishToLedger writes the history entry at most once per transaction and
// marks the message PROCESSED. A message whose entry already exists is only marked.
func (p *LedgerPublisherImpl) PublishToLedger(ctx context.Context, message *outbox.Message) error {
	entry, err := message.LedgerEntry()
	if err != nil {
		p.logger.Error("Outbox message does not carry a usable ledger entry",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to mark outbox message FAILED_TO_PUBLISH", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if entry.CorrelationID != "" {
		logger = p.logger.With("correlation_id", entry.CorrelationID)
	}

	existing, err := p.ledgerRepo.GetByTransactionID(ctx, entry.TransactionID)
	if err != nil && !errors.Is(err, ledger.ErrEntryNotFound{}) {
		return fmt.Errorf("failed to check existing ledger entry %s: %w", entry.TransactionID, err)
	}

	if existing != nil {
		logger.Info("Ledger entry already projected", "transaction_id", entry.TransactionID)
	} else {
		projectedAt := p.now()
		entry.ProjectedAt = &projectedAt
		err = p.ledgerRepo.Create(ctx, entry)
		switch {
		case errors.Is(err, ledger.ErrDuplicateEntry{}):
			// another poller won the insert
			logger.Info("Ledger entry created concurrently", "transaction_id", entry.TransactionID)
		case err != nil:
			return fmt.Errorf("failed to create ledger entry %s: %w", entry.TransactionID, err)
		default:
			logger.Info("Ledger entry created", "transaction_id", entry.TransactionID, "kind", entry.Kind, "status", entry.Status)
		}
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		return fmt.Errorf("ledger write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}
	return nil
}
