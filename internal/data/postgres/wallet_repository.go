// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be rebound to a pgx.Tx with WithTx so that several of
// them take part in one database transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/wallet"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

const walletColumns = `id, owner_id, balance, created_at, updated_at`

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new wallet. A second wallet for the same owner violates the
// unique owner constraint and is reported as ErrWalletExists.
func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (id, owner_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, w.ID, w.OwnerID, w.Balance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return wallet.ErrWalletExists{OwnerID: w.OwnerID}
		}
		r.logger.Error("Failed to create wallet", "owner_id", w.OwnerID.String(), "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByOwnerID retrieves the wallet of a user
func (r *WalletRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1`
	return r.getOne(ctx, query, ownerID, wallet.ErrWalletNotFound{OwnerID: ownerID})
}

// GetByID retrieves a wallet by its ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return r.getOne(ctx, query, id, wallet.ErrWalletNotFound{WalletID: id})
}

// LockByOwnerID reads the owner's wallet with SELECT ... FOR UPDATE. Only
// meaningful on a transaction-bound repository.
func (r *WalletRepository) LockByOwnerID(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 FOR UPDATE`
	return r.getOne(ctx, query, ownerID, wallet.ErrWalletNotFound{OwnerID: ownerID})
}

// LockByID reads a wallet with SELECT ... FOR UPDATE
func (r *WalletRepository) LockByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id, wallet.ErrWalletNotFound{WalletID: id})
}

func (r *WalletRepository) getOne(ctx context.Context, query string, arg uuid.UUID, notFound error) (*wallet.Wallet, error) {
	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, arg).Scan(
		&w.ID,
		&w.OwnerID,
		&w.Balance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		r.logger.Error("Failed to get wallet", "key", arg.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// UpdateBalance applies delta in a single statement that refuses to take the
// balance below zero, and returns the new balance.
func (r *WalletRepository) UpdateBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.querier.QueryRow(ctx, query, delta, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to update wallet balance", "wallet_id", id.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	// Nothing matched: either the wallet is gone or the guard rejected the debit
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Zero, wallet.ErrInsufficientBalance{
		WalletID:  id,
		Balance:   current.Balance,
		Requested: delta.Neg(),
	}
}
