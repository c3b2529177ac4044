package razorpay

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/domain/payment"
	"github.com/miniguru-commerce/internal/domain/shared"
)

type MockOrderAPI struct {
	mock.Mock
}

func (m *MockOrderAPI) Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	args := m.Called(data, extraHeaders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockOrderAPI) Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	args := m.Called(orderID, queryParams, extraHeaders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func newTestClient(api orderAPI, timeout time.Duration) *Client {
	return &Client{
		orders:  api,
		timeout: timeout,
		logger:  slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(slog.Default(), &config.RazorpayConfig{KeyID: "rzp_test", KeySecret: "secret", Timeout: 15 * time.Second})
	assert.NotNil(t, c.orders)
	assert.Equal(t, 15*time.Second, c.timeout)
}

func TestClient_CreateOrder(t *testing.T) {
	ctx := context.Background()
	req := payment.CreateOrderRequest{
		AmountMinor: 50000,
		Currency:    "INR",
		Receipt:     "txn-1",
		Notes:       map[string]string{"user_id": "u-1", "transaction_id": "txn-1"},
	}

	t.Run("Success", func(t *testing.T) {
		api := &MockOrderAPI{}
		api.On("Create", mock.MatchedBy(func(data map[string]interface{}) bool {
			notes := data["notes"].(map[string]interface{})
			return data["amount"] == int64(50000) && data["currency"] == "INR" &&
				data["receipt"] == "txn-1" && notes["user_id"] == "u-1"
		}), map[string]string(nil)).Return(map[string]interface{}{
			"id":          "order_Abc123",
			"status":      "created",
			"amount":      float64(50000),
			"amount_paid": float64(0),
			"amount_due":  float64(50000),
			"currency":    "INR",
			"receipt":     "txn-1",
		}, nil).Once()

		order, err := newTestClient(api, time.Second).CreateOrder(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "order_Abc123", order.ID)
		assert.Equal(t, payment.OrderCreated, order.Status)
		assert.Equal(t, int64(50000), order.AmountDue)
		api.AssertExpectations(t)
	})

	t.Run("ProviderError", func(t *testing.T) {
		api := &MockOrderAPI{}
		api.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("BAD_REQUEST_ERROR")).Once()

		_, err := newTestClient(api, time.Second).CreateOrder(ctx, req)
		assert.ErrorIs(t, err, shared.ErrGateway)
		var gwErr *shared.GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, "create_order", gwErr.Op)
	})

	t.Run("MissingID", func(t *testing.T) {
		api := &MockOrderAPI{}
		api.On("Create", mock.Anything, mock.Anything).Return(map[string]interface{}{"status": "created"}, nil).Once()

		_, err := newTestClient(api, time.Second).CreateOrder(ctx, req)
		assert.ErrorIs(t, err, shared.ErrGateway)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		api := &MockOrderAPI{}
		_, err := newTestClient(api, time.Second).CreateOrder(ctx, payment.CreateOrderRequest{AmountMinor: 0})
		assert.ErrorIs(t, err, shared.ErrValidation)
		api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestClient_FetchOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Paid", func(t *testing.T) {
		api := &MockOrderAPI{}
		api.On("Fetch", "order_Abc123", map[string]interface{}(nil), map[string]string(nil)).Return(map[string]interface{}{
			"id":          "order_Abc123",
			"status":      "paid",
			"amount":      float64(50000),
			"amount_paid": float64(50000),
			"amount_due":  float64(0),
			"currency":    "INR",
		}, nil).Once()

		order, err := newTestClient(api, time.Second).FetchOrder(ctx, "order_Abc123")
		require.NoError(t, err)
		assert.Equal(t, payment.OrderPaid, order.Status)
		assert.Equal(t, int64(50000), order.AmountPaid)
	})

	t.Run("Timeout", func(t *testing.T) {
		api := &MockOrderAPI{}
		api.On("Fetch", "order_slow", mock.Anything, mock.Anything).
			After(200*time.Millisecond).
			Return(map[string]interface{}{"id": "order_slow", "status": "paid"}, nil).Once()

		start := time.Now()
		_, err := newTestClient(api, 20*time.Millisecond).FetchOrder(ctx, "order_slow")
		assert.ErrorIs(t, err, shared.ErrGateway)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 150*time.Millisecond)
	})

	t.Run("FractionalAmount", func(t *testing.T) {
		api := &MockOrderAPI{}
		api.On("Fetch", "order_odd", mock.Anything, mock.Anything).Return(map[string]interface{}{
			"id": "order_odd", "status": "paid", "amount_paid": 10.5,
		}, nil).Once()

		_, err := newTestClient(api, time.Second).FetchOrder(ctx, "order_odd")
		assert.ErrorIs(t, err, shared.ErrGateway)
	})
}
