package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Repository persists wallets
type Repository interface {
	Create(ctx context.Context, wallet *Wallet) error
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// LockByOwnerID acquires a row lock on the owner's wallet for the rest of the transaction
	LockByOwnerID(ctx context.Context, ownerID uuid.UUID) (*Wallet, error)
	LockByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// UpdateBalance adds delta and returns the new balance; fails with
	// ErrInsufficientBalance instead of going negative
	UpdateBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}

// TransactionRepository persists the append-only ledger
type TransactionRepository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	LockByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error)

	// SetExternalOrderID attaches the gateway order id to a PENDING transaction
	SetExternalOrderID(ctx context.Context, id uuid.UUID, externalOrderID string) error

	// Finalize persists a terminal transition; only PENDING rows are updated
	Finalize(ctx context.Context, txn *Transaction) error
	WithTx(tx pgx.Tx) TransactionRepository
}

// ErrWalletNotFound indicates a user without a wallet
type ErrWalletNotFound struct {
	OwnerID  uuid.UUID
	WalletID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	if e.OwnerID != uuid.Nil {
		return "wallet not found for user: " + e.OwnerID.String()
	}
	return "wallet not found: " + e.WalletID.String()
}

func (e ErrWalletNotFound) Is(target error) bool { return target == shared.ErrNotFound }

// ErrWalletExists indicates the owner already has a wallet
type ErrWalletExists struct {
	OwnerID uuid.UUID
}

func (e ErrWalletExists) Error() string {
	return "wallet already exists for user: " + e.OwnerID.String()
}

func (e ErrWalletExists) Is(target error) bool { return target == shared.ErrConflict }

// ErrTransactionNotFound indicates a missing ledger transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

func (e ErrTransactionNotFound) Is(target error) bool { return target == shared.ErrNotFound }

// ErrInsufficientBalance indicates a debit larger than the balance
type ErrInsufficientBalance struct {
	WalletID  uuid.UUID
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e ErrInsufficientBalance) Error() string {
	return "insufficient balance: available " + e.Balance.StringFixed(2) + ", requested " + e.Requested.StringFixed(2)
}

func (e ErrInsufficientBalance) Is(target error) bool { return target == shared.ErrInsufficientBalance }

// ErrInvalidKind indicates an unknown transaction kind
type ErrInvalidKind struct {
	Kind Kind
}

func (e ErrInvalidKind) Error() string {
	return "invalid transaction kind: " + string(e.Kind)
}

func (e ErrInvalidKind) Is(target error) bool { return target == shared.ErrValidation }
