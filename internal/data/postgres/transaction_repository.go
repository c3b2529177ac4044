package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/wallet"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

const transactionColumns = `id, wallet_id, amount, kind, status, reference,
	COALESCE(external_order_id, ''), failure_reason, created_at, completed_at`

// TransactionRepository implements wallet.TransactionRepository for PostgreSQL.
// Rows are never deleted; the only mutation is the single PENDING to terminal
// transition guarded in Finalize.
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.TransactionRepository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *TransactionRepository) WithTx(tx pgx.Tx) wallet.TransactionRepository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new transaction record
func (r *TransactionRepository) Create(ctx context.Context, txn *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions
			(id, wallet_id, amount, kind, status, reference, external_order_id, failure_reason, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.WalletID,
		txn.Amount,
		txn.Kind,
		txn.Status,
		txn.Reference,
		txn.ExternalOrderID,
		txn.FailureReason,
		txn.CreatedAt,
		txn.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction",
			"transaction_id", txn.ID.String(),
			"wallet_id", txn.WalletID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// LockByID reads a transaction with SELECT ... FOR UPDATE, serialising
// concurrent settlements of the same top-up.
func (r *TransactionRepository) LockByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *TransactionRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*wallet.Transaction, error) {
	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListByWalletID returns a page of the wallet's transactions, newest first
func (r *TransactionRepository) ListByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*wallet.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions", "wallet_id", walletID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]*wallet.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}

// CountByWalletID counts all transactions of a wallet
func (r *TransactionRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`, walletID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions", "wallet_id", walletID.String(), "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SetExternalOrderID records the gateway order on a PENDING transaction
func (r *TransactionRepository) SetExternalOrderID(ctx context.Context, id uuid.UUID, externalOrderID string) error {
	query := `
		UPDATE wallet_transactions
		SET external_order_id = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.querier.Exec(ctx, query, externalOrderID, id, wallet.StatusPending)
	if err != nil {
		r.logger.Error("Failed to set external order id", "transaction_id", id.String(), "error", err)
		return fmt.Errorf("failed to set external order id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.notPending(ctx, id, wallet.StatusPending)
	}

	return nil
}

// Finalize writes the terminal status, settled amount and failure reason.
// The WHERE clause only matches PENDING rows, so a transaction can be
// finalized at most once.
func (r *TransactionRepository) Finalize(ctx context.Context, txn *wallet.Transaction) error {
	if !txn.Status.IsTerminal() {
		return shared.InvalidStateError{Entity: "transaction", From: string(wallet.StatusPending), To: string(txn.Status)}
	}

	query := `
		UPDATE wallet_transactions
		SET status = $1, amount = $2, failure_reason = $3, completed_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := r.querier.Exec(ctx, query,
		txn.Status,
		txn.Amount,
		txn.FailureReason,
		txn.CompletedAt,
		txn.ID,
		wallet.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to finalize transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to finalize transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.notPending(ctx, txn.ID, txn.Status)
	}

	return nil
}

// notPending explains why a PENDING-guarded update matched no row
func (r *TransactionRepository) notPending(ctx context.Context, id uuid.UUID, to wallet.Status) error {
	var current wallet.Status
	err := r.querier.QueryRow(ctx, `SELECT status FROM wallet_transactions WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wallet.ErrTransactionNotFound{TransactionID: id}
		}
		return fmt.Errorf("failed to read transaction status: %w", err)
	}
	return shared.InvalidStateError{Entity: "transaction", From: string(current), To: string(to)}
}

func scanTransaction(row pgx.Row) (*wallet.Transaction, error) {
	var txn wallet.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.WalletID,
		&txn.Amount,
		&txn.Kind,
		&txn.Status,
		&txn.Reference,
		&txn.ExternalOrderID,
		&txn.FailureReason,
		&txn.CreatedAt,
		&txn.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
