// Package razorpay adapts the Razorpay Orders API to the payment gateway
// interface used by the top-up flow.
package razorpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	razorpaysdk "github.com/razorpay/razorpay-go"

	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/domain/payment"
	"github.com/miniguru-commerce/internal/domain/shared"
)

const providerName = "razorpay"

// orderAPI is the subset of the SDK's order resource in use
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client talks to Razorpay. Every call is bounded by timeout; errors are
// wrapped in *shared.GatewayError.
type Client struct {
	orders  orderAPI
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(logger *slog.Logger, cfg *config.RazorpayConfig) *Client {
	sdk := razorpaysdk.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Client{
		orders:  sdk.Order,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// CreateOrder opens a payment order for AmountMinor paise
func (c *Client) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.Order, error) {
	if req.AmountMinor <= 0 {
		return nil, shared.NewValidationError("amount", "must be positive")
	}

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	body, err := c.call(ctx, "create_order", func() (map[string]interface{}, error) {
		return c.orders.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}

	order, err := decodeOrder(body)
	if err != nil {
		return nil, &shared.GatewayError{Provider: providerName, Op: "create_order", Err: err}
	}
	c.logger.Info("Gateway order created", "external_order_id", order.ID, "receipt", req.Receipt)
	return order, nil
}

// FetchOrder reads the current status of a payment order
func (c *Client) FetchOrder(ctx context.Context, externalOrderID string) (*payment.Order, error) {
	body, err := c.call(ctx, "fetch_order", func() (map[string]interface{}, error) {
		return c.orders.Fetch(externalOrderID, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	order, err := decodeOrder(body)
	if err != nil {
		return nil, &shared.GatewayError{Provider: providerName, Op: "fetch_order", Err: err}
	}
	return order, nil
}

type callResult struct {
	body map[string]interface{}
	err  error
}

// call runs fn with the configured deadline. The SDK has no context support,
// so a timed-out request keeps running in the background until it returns.
func (c *Client) call(ctx context.Context, op string, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		body, err := fn()
		done <- callResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		c.logger.Warn("Gateway call timed out", "op", op, "timeout", c.timeout)
		return nil, &shared.GatewayError{Provider: providerName, Op: op, Err: ctx.Err()}
	case res := <-done:
		if res.err != nil {
			c.logger.Error("Gateway call failed", "op", op, "error", res.err)
			return nil, &shared.GatewayError{Provider: providerName, Op: op, Err: res.err}
		}
		return res.body, nil
	}
}

func decodeOrder(body map[string]interface{}) (*payment.Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("response has no order id")
	}
	status, _ := body["status"].(string)
	currency, _ := body["currency"].(string)
	receipt, _ := body["receipt"].(string)

	amount, err := minorUnits(body, "amount")
	if err != nil {
		return nil, err
	}
	amountPaid, err := minorUnits(body, "amount_paid")
	if err != nil {
		return nil, err
	}
	amountDue, err := minorUnits(body, "amount_due")
	if err != nil {
		return nil, err
	}

	return &payment.Order{
		ID:         id,
		Status:     payment.OrderStatus(status),
		Amount:     amount,
		AmountPaid: amountPaid,
		AmountDue:  amountDue,
		Currency:   currency,
		Receipt:    receipt,
	}, nil
}

// minorUnits reads an integer amount; JSON decoding hands numbers over as float64
func minorUnits(body map[string]interface{}, key string) (int64, error) {
	switch v := body[key].(type) {
	case nil:
		return 0, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%s is not an integer: %v", key, v)
		}
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s has unexpected type %T", key, v)
	}
}
