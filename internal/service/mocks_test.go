package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/order"
	"github.com/miniguru-commerce/internal/domain/outbox"
	"github.com/miniguru-commerce/internal/domain/payment"
	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/user"
	"github.com/miniguru-commerce/internal/domain/video"
	"github.com/miniguru-commerce/internal/domain/wallet"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decimalEq(expected string) interface{} {
	return mock.MatchedBy(func(v decimal.Decimal) bool { return v.Equal(d(expected)) })
}

// fakeTxManager runs the unit of work once with a nil tx; the repository mocks ignore it
type fakeTxManager struct {
	calls    int
	beginErr error
}

func (f *fakeTxManager) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

type MockWalletRepo struct{ mock.Mock }

func (m *MockWalletRepo) Create(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockWalletRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) LockByOwnerID(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) LockByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepo) UpdateBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletRepo) WithTx(pgx.Tx) wallet.Repository { return m }

type MockTransactionRepo struct{ mock.Mock }

func (m *MockTransactionRepo) Create(ctx context.Context, txn *wallet.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) LockByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*wallet.Transaction, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) SetExternalOrderID(ctx context.Context, id uuid.UUID, externalOrderID string) error {
	return m.Called(ctx, id, externalOrderID).Error(0)
}

func (m *MockTransactionRepo) Finalize(ctx context.Context, txn *wallet.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepo) WithTx(pgx.Tx) wallet.TransactionRepository { return m }

type MockOutboxRepo struct{ mock.Mock }

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) RecordFailure(ctx context.Context, id int64, maxAttempts int) (shared.OutboxStatus, error) {
	args := m.Called(ctx, id, maxAttempts)
	return args.Get(0).(shared.OutboxStatus), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(pgx.Tx) outbox.Repository { return m }

type MockHistoryRepo struct{ mock.Mock }

func (m *MockHistoryRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockHistoryRepo) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockHistoryRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockHistoryRepo) CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) Create(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) List(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]*product.Product, error) {
	args := m.Called(ctx, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepo) Update(ctx context.Context, id uuid.UUID, changes product.Changes) (*product.Product, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCategoryRepo struct{ mock.Mock }

func (m *MockCategoryRepo) Create(ctx context.Context, c *product.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*product.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Category), args.Error(1)
}

func (m *MockCategoryRepo) List(ctx context.Context) ([]*product.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Category), args.Error(1)
}

func (m *MockProductRepo) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepo) DecrementInventory(ctx context.Context, id uuid.UUID, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockProductRepo) IncrementInventory(ctx context.Context, id uuid.UUID, quantity int) (*product.Product, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) WithTx(pgx.Tx) product.Repository { return m }

type MockOrderRepo struct{ mock.Mock }

func (m *MockOrderRepo) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepo) ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepo) List(ctx context.Context, limit, offset int) ([]*order.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepo) WithTx(pgx.Tx) order.Repository { return m }

type MockVideoRepo struct{ mock.Mock }

func (m *MockVideoRepo) Create(ctx context.Context, v *video.PendingVideo) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*video.PendingVideo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.PendingVideo), args.Error(1)
}

func (m *MockVideoRepo) ListByStatus(ctx context.Context, status video.Status) ([]*video.PendingVideo, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*video.PendingVideo), args.Error(1)
}

func (m *MockVideoRepo) ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]*video.PendingVideo, error) {
	args := m.Called(ctx, uploaderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*video.PendingVideo), args.Error(1)
}

func (m *MockVideoRepo) SaveTransition(ctx context.Context, v *video.PendingVideo) error {
	return m.Called(ctx, v).Error(0)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepo) WithTx(pgx.Tx) user.Repository { return m }

type MockTxLedger struct{ mock.Mock }

func (m *MockTxLedger) DebitInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, userID, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockTxLedger) OpenPendingCredit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, userID, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockTxLedger) SettleCreditInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, txn *wallet.Transaction, paid decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, userID, txn, paid)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockGateway struct{ mock.Mock }

func (m *MockGateway) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Order), args.Error(1)
}

func (m *MockGateway) FetchOrder(ctx context.Context, externalOrderID string) (*payment.Order, error) {
	args := m.Called(ctx, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Order), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockPublisher) Close() error { return m.Called().Error(0) }

type MockVideoPublisher struct{ mock.Mock }

func (m *MockVideoPublisher) Publish(ctx context.Context, v *video.PendingVideo, privacy video.Privacy) (video.PublishResult, error) {
	args := m.Called(ctx, v, privacy)
	return args.Get(0).(video.PublishResult), args.Error(1)
}

type MockApprovalLock struct{ mock.Mock }

func (m *MockApprovalLock) Acquire(ctx context.Context, videoID uuid.UUID) (string, error) {
	args := m.Called(ctx, videoID)
	return args.String(0), args.Error(1)
}

func (m *MockApprovalLock) Release(ctx context.Context, videoID uuid.UUID, token string) error {
	return m.Called(ctx, videoID, token).Error(0)
}

type MockResetTokenStore struct{ mock.Mock }

func (m *MockResetTokenStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return m.Called(ctx, token, userID, ttl).Error(0)
}

func (m *MockResetTokenStore) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockResetNotifier struct{ mock.Mock }

func (m *MockResetNotifier) SendResetToken(ctx context.Context, u *user.User, token string) error {
	return m.Called(ctx, u, token).Error(0)
}
