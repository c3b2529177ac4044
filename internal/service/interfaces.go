// Package service holds the business operations shared by the HTTP API and the
// settlement worker: the wallet ledger, order settlement, payment top-ups,
// the video review workflow, the product catalogue and password resets.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/order"
	"github.com/miniguru-commerce/internal/domain/payment"
	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/user"
	"github.com/miniguru-commerce/internal/domain/video"
	"github.com/miniguru-commerce/internal/domain/wallet"
)

// TxLedger exposes ledger mutations that join a caller's database transaction.
// They are building blocks for other services and are never exposed over HTTP.
type TxLedger interface {
	// DebitInTx locks the owner's wallet and records a COMPLETED debit
	DebitInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error)

	// OpenPendingCredit records a PENDING credit without touching the balance
	OpenPendingCredit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error)

	// SettleCreditInTx completes a row-locked PENDING credit for the amount
	// actually paid and returns the new balance
	SettleCreditInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, txn *wallet.Transaction, paid decimal.Decimal) (decimal.Decimal, error)
}

// LedgerService owns wallet balances and the transaction log
type LedgerService interface {
	TxLedger

	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)
	CreateWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)

	// ListTransactions returns a page of the caller's transactions, newest first, and the total count
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*wallet.Transaction, int64, error)

	// ListHistory reads the projected history of completed transactions
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, int64, error)
}

// OrderService places and reads orders
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req order.Request) (*order.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*order.Order, error)
	ListAllOrders(ctx context.Context, limit, offset int) ([]*order.Order, error)
}

// PaymentService tops wallets up through the payment gateway
type PaymentService interface {
	CreateTopUpIntent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*TopUpIntent, error)
	VerifyAndSettle(ctx context.Context, userID, transactionID uuid.UUID, externalOrderID string) (*SettlementResult, error)

	// SettleRequest re-runs verification for a queued retry without queueing another one
	SettleRequest(ctx context.Context, request *shared.SettlementRequest) (*SettlementResult, error)
}

// VideoService runs the review workflow for submitted videos
type VideoService interface {
	Submit(ctx context.Context, uploaderID uuid.UUID, meta video.Metadata, file video.File) (*video.PendingVideo, error)
	Approve(ctx context.Context, adminID, videoID uuid.UUID, privacy string) (*video.PendingVideo, error)
	Reject(ctx context.Context, adminID, videoID uuid.UUID, reason string) (*video.PendingVideo, error)
	Get(ctx context.Context, videoID uuid.UUID) (*video.PendingVideo, error)
	ListPending(ctx context.Context) ([]*video.PendingVideo, error)
	ListMySubmissions(ctx context.Context, uploaderID uuid.UUID) ([]*video.PendingVideo, error)
}

// ProductService manages the catalogue and its categories
type ProductService interface {
	CreateProduct(ctx context.Context, name string, price decimal.Decimal, inventory int, categoryID *uuid.UUID) (*product.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	ListProducts(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]*product.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, changes product.Changes) (*product.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Restock(ctx context.Context, id uuid.UUID, quantity int) (*product.Product, error)

	CreateCategory(ctx context.Context, name, icon string) (*product.Category, error)
	ListCategories(ctx context.Context) ([]*product.Category, error)
}

// PasswordResetService issues and redeems single-use reset tokens
type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, token, newPassword string) error
}

// PaymentGateway is the external payment provider
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.Order, error)
	FetchOrder(ctx context.Context, externalOrderID string) (*payment.Order, error)
}

// VideoPublisher uploads an approved video to the video provider
type VideoPublisher interface {
	Publish(ctx context.Context, v *video.PendingVideo, privacy video.Privacy) (video.PublishResult, error)
}

// ApprovalLock serializes approvals of the same video
type ApprovalLock interface {
	Acquire(ctx context.Context, videoID uuid.UUID) (string, error)
	Release(ctx context.Context, videoID uuid.UUID, token string) error
}

// ResetTokenStore keeps reset tokens until they expire or are consumed
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}

// ResetNotifier delivers a reset token to its owner
type ResetNotifier interface {
	SendResetToken(ctx context.Context, u *user.User, token string) error
}
