package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miniguru-commerce/internal/api_gateway/middleware"
	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/order"
	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/video"
	"github.com/miniguru-commerce/internal/domain/wallet"
	"github.com/miniguru-commerce/internal/service"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestRouter authenticates every request as userID when it is not uuid.Nil
func setupTestRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	if userID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, userID)
			c.Next()
		})
	}
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type requestFunc func(method, path string, body interface{}) *httptest.ResponseRecorder

func bindRouter(r *gin.Engine) requestFunc {
	return func(method, path string, body interface{}) *httptest.ResponseRecorder {
		return doRequest(r, method, path, body)
	}
}

// decodeData unmarshals the envelope and its data field into dst
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) Response {
	t.Helper()
	var envelope struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope), "Failed to unmarshal response")
	if dst != nil {
		require.NotEmpty(t, envelope.Data, "'data' field should not be empty")
		require.NoError(t, json.Unmarshal(envelope.Data, dst))
	}
	return envelope.Response
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorInfo {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error, "'error' field should not be nil")
	return *resp.Error
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decimalEq(expected decimal.Decimal) interface{} {
	return mock.MatchedBy(func(actual decimal.Decimal) bool { return expected.Equal(actual) })
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) DebitInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, userID, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockLedgerService) OpenPendingCredit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, userID, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockLedgerService) SettleCreditInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, txn *wallet.Transaction, paid decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, userID, txn, paid)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	args := m.Called(ctx, userID, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*wallet.Transaction, error) {
	args := m.Called(ctx, userID, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockLedgerService) CreateWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*wallet.Transaction, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*wallet.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateTopUpIntent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*service.TopUpIntent, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TopUpIntent), args.Error(1)
}

func (m *MockPaymentService) VerifyAndSettle(ctx context.Context, userID, transactionID uuid.UUID, externalOrderID string) (*service.SettlementResult, error) {
	args := m.Called(ctx, userID, transactionID, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SettlementResult), args.Error(1)
}

func (m *MockPaymentService) SettleRequest(ctx context.Context, request *shared.SettlementRequest) (*service.SettlementResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SettlementResult), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req order.Request) (*order.Order, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) ListAllOrders(ctx context.Context, limit, offset int) ([]*order.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, name string, price decimal.Decimal, inventory int, categoryID *uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, name, price, inventory, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]*product.Product, error) {
	args := m.Called(ctx, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, changes product.Changes) (*product.Product, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) CreateCategory(ctx context.Context, name, icon string) (*product.Category, error) {
	args := m.Called(ctx, name, icon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Category), args.Error(1)
}

func (m *MockProductService) ListCategories(ctx context.Context) ([]*product.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Category), args.Error(1)
}

func (m *MockProductService) Restock(ctx context.Context, id uuid.UUID, quantity int) (*product.Product, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

type MockVideoService struct {
	mock.Mock
}

func (m *MockVideoService) Submit(ctx context.Context, uploaderID uuid.UUID, meta video.Metadata, file video.File) (*video.PendingVideo, error) {
	args := m.Called(ctx, uploaderID, meta, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.PendingVideo), args.Error(1)
}

func (m *MockVideoService) Approve(ctx context.Context, adminID, videoID uuid.UUID, privacy string) (*video.PendingVideo, error) {
	args := m.Called(ctx, adminID, videoID, privacy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.PendingVideo), args.Error(1)
}

func (m *MockVideoService) Reject(ctx context.Context, adminID, videoID uuid.UUID, reason string) (*video.PendingVideo, error) {
	args := m.Called(ctx, adminID, videoID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.PendingVideo), args.Error(1)
}

func (m *MockVideoService) Get(ctx context.Context, videoID uuid.UUID) (*video.PendingVideo, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.PendingVideo), args.Error(1)
}

func (m *MockVideoService) ListPending(ctx context.Context) ([]*video.PendingVideo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*video.PendingVideo), args.Error(1)
}

func (m *MockVideoService) ListMySubmissions(ctx context.Context, uploaderID uuid.UUID) ([]*video.PendingVideo, error) {
	args := m.Called(ctx, uploaderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*video.PendingVideo), args.Error(1)
}

type MockPasswordResetService struct {
	mock.Mock
}

func (m *MockPasswordResetService) RequestReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockPasswordResetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}
