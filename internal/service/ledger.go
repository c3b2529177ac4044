package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/outbox"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/wallet"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

// LedgerServiceImpl implements LedgerService on PostgreSQL with a MongoDB
// history projection fed through the outbox
type LedgerServiceImpl struct {
	txManager   persistence.TxManager
	walletRepo  wallet.Repository
	txnRepo     wallet.TransactionRepository
	outboxRepo  outbox.Repository
	historyRepo ledger.Repository
	logger      *slog.Logger
}

func NewLedgerService(
	logger *slog.Logger,
	txManager persistence.TxManager,
	walletRepo wallet.Repository,
	txnRepo wallet.TransactionRepository,
	outboxRepo outbox.Repository,
	historyRepo ledger.Repository,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		txManager:   txManager,
		walletRepo:  walletRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

var _ LedgerService = (*LedgerServiceImpl)(nil)

func (s *LedgerServiceImpl) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	return s.post(ctx, userID, wallet.KindDebit, amount, reference)
}

func (s *LedgerServiceImpl) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	return s.post(ctx, userID, wallet.KindCredit, amount, reference)
}

// post runs a standalone debit or credit. When the unit of work fails after the
// PENDING row was written, the rollback removes it and a FAILED row is recorded
// in its own transaction instead.
func (s *LedgerServiceImpl) post(ctx context.Context, userID uuid.UUID, kind wallet.Kind, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	if err := shared.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var posted, written *wallet.Transaction
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		written = nil
		txn, err := s.postInTx(ctx, tx, userID, kind, amount, reference, func(t *wallet.Transaction) {
			written = t
		})
		if err != nil {
			return err
		}
		posted = txn
		return nil
	})
	if err != nil {
		if written != nil {
			s.recordFailure(ctx, written, err)
		}
		return nil, err
	}

	s.logger.Info("Wallet transaction completed",
		"transaction_id", posted.ID.String(),
		"wallet_id", posted.WalletID.String(),
		"kind", string(posted.Kind),
		"amount", posted.Amount.StringFixed(2),
		"correlation_id", shared.CorrelationID(ctx),
	)
	return posted, nil
}

func (s *LedgerServiceImpl) DebitInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	return s.postInTx(ctx, tx, userID, wallet.KindDebit, amount, reference, nil)
}

func (s *LedgerServiceImpl) postInTx(
	ctx context.Context,
	tx pgx.Tx,
	userID uuid.UUID,
	kind wallet.Kind,
	amount decimal.Decimal,
	reference string,
	onWritten func(*wallet.Transaction),
) (*wallet.Transaction, error) {
	locked, err := s.walletRepo.WithTx(tx).LockByOwnerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	txn, err := wallet.NewTransaction(locked.ID, kind, amount, reference)
	if err != nil {
		return nil, err
	}
	if kind == wallet.KindDebit && !locked.CanDebit(amount) {
		return nil, wallet.ErrInsufficientBalance{WalletID: locked.ID, Balance: locked.Balance, Requested: amount}
	}

	if err := s.txnRepo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create %s transaction: %w", kind, err)
	}
	if onWritten != nil {
		onWritten(txn)
	}

	if _, err := s.completeInTx(ctx, tx, userID, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *LedgerServiceImpl) OpenPendingCredit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	w, err := s.walletRepo.WithTx(tx).GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	txn, err := wallet.NewTransaction(w.ID, wallet.KindCredit, amount, reference)
	if err != nil {
		return nil, err
	}
	if err := s.txnRepo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create pending credit: %w", err)
	}
	return txn, nil
}

func (s *LedgerServiceImpl) SettleCreditInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, txn *wallet.Transaction, paid decimal.Decimal) (decimal.Decimal, error) {
	if txn.Kind != wallet.KindCredit {
		return decimal.Zero, shared.NewValidationError("transaction_id", "is not a credit transaction")
	}
	if err := txn.SettleAmount(paid); err != nil {
		return decimal.Zero, err
	}
	return s.completeInTx(ctx, tx, userID, txn)
}

// completeInTx applies a PENDING transaction to the balance, marks it COMPLETED
// and queues its history entry in the outbox
func (s *LedgerServiceImpl) completeInTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, txn *wallet.Transaction) (decimal.Decimal, error) {
	balance, err := s.walletRepo.WithTx(tx).UpdateBalance(ctx, txn.WalletID, txn.Signed())
	if err != nil {
		return decimal.Zero, err
	}

	if err := txn.Complete(); err != nil {
		return decimal.Zero, err
	}
	if err := s.txnRepo.WithTx(tx).Finalize(ctx, txn); err != nil {
		return decimal.Zero, fmt.Errorf("failed to finalize transaction %s: %w", txn.ID, err)
	}

	entry := ledger.NewEntry(txn, ownerID, balance.StringFixed(2), shared.CorrelationID(ctx))
	msg, err := outbox.NewLedgerMessage(entry)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build outbox message for %s: %w", txn.ID, err)
	}
	if err := s.outboxRepo.WithTx(tx).Create(ctx, msg); err != nil {
		return decimal.Zero, fmt.Errorf("failed to create outbox message for %s: %w", txn.ID, err)
	}
	return balance, nil
}

// recordFailure persists a FAILED copy of a transaction whose unit of work was rolled back
func (s *LedgerServiceImpl) recordFailure(ctx context.Context, txn *wallet.Transaction, cause error) {
	failed := *txn
	failed.Status = wallet.StatusPending
	failed.CompletedAt = nil
	if err := failed.Fail(cause.Error()); err != nil {
		return
	}

	// The caller's context may already be canceled; the record must still be written
	detached := context.WithoutCancel(ctx)
	err := s.txManager.ExecuteTx(detached, func(tx pgx.Tx) error {
		return s.txnRepo.WithTx(tx).Create(detached, &failed)
	})
	if err != nil {
		s.logger.Error("Failed to record failed transaction",
			"transaction_id", failed.ID.String(),
			"reason", failed.FailureReason,
			"error", err,
		)
		return
	}
	s.logger.Warn("Recorded failed transaction",
		"transaction_id", failed.ID.String(),
		"wallet_id", failed.WalletID.String(),
		"reason", failed.FailureReason,
	)
}

func (s *LedgerServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	return s.walletRepo.GetByOwnerID(ctx, userID)
}

func (s *LedgerServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	w := wallet.NewWallet(userID)
	if err := s.walletRepo.Create(ctx, w); err != nil {
		if !errors.Is(err, shared.ErrConflict) {
			s.logger.Error("Failed to create wallet", "user_id", userID.String(), "error", err)
		}
		return nil, err
	}
	s.logger.Info("Wallet created", "wallet_id", w.ID.String(), "user_id", userID.String())
	return w, nil
}

func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*wallet.Transaction, int64, error) {
	w, err := s.walletRepo.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	txns, err := s.txnRepo.ListByWalletID(ctx, w.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txnRepo.CountByWalletID(ctx, w.ID)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func (s *LedgerServiceImpl) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, int64, error) {
	entries, err := s.historyRepo.GetByOwnerID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.historyRepo.CountByOwnerID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
