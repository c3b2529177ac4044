package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// SettlementConfig bounds the gateway retries for one request
type SettlementConfig struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ErrRetriesExhausted is returned when the gateway stayed unavailable for every attempt
type ErrRetriesExhausted struct {
	Attempts int
	Err      error
}

func (e ErrRetriesExhausted) Error() string {
	return fmt.Sprintf("settlement gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e ErrRetriesExhausted) Unwrap() error { return e.Err }

// SettlementProcessor re-runs top-up verification, retrying while the gateway is unavailable
type SettlementProcessor struct {
	payments RequestSettler
	config   SettlementConfig
	logger   *slog.Logger
}

func NewSettlementProcessor(payments RequestSettler, config SettlementConfig, logger *slog.Logger) *SettlementProcessor {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 1
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 500 * time.Millisecond
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = 30 * time.Second
	}
	return &SettlementProcessor{payments: payments, config: config, logger: logger}
}

var _ Settler = (*SettlementProcessor)(nil)

// Settle returns nil once the request needs no further work. A gateway that
// reports the order unpaid also ends the request: the transaction stays
// PENDING and the user can verify again.
func (p *SettlementProcessor) Settle(ctx context.Context, request *shared.SettlementRequest) error {
	ctx = shared.WithCorrelationID(ctx, request.CorrelationID)
	logger := p.logger.With(
		"transaction_id", request.TransactionID.String(),
		"external_order_id", request.ExternalOrderID,
	)
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	attempts := 0
	operation := func() error {
		attempts++
		result, err := p.payments.SettleRequest(ctx, request)
		if err != nil {
			if errors.Is(err, shared.ErrGateway) {
				logger.Warn("Payment gateway unavailable, will retry settlement", "attempt", attempts, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		logger.Info("Settlement request handled", "attempt", attempts, "settled", result.Settled, "message", result.Message)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.config.InitialInterval
	policy.MaxInterval = p.config.MaxInterval
	policy.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, p.config.MaxAttempts-1), ctx))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, shared.ErrGateway) {
		logger.Error("Settlement retries exhausted", "attempts", attempts, "error", err)
		return ErrRetriesExhausted{Attempts: attempts, Err: err}
	}
	logger.Error("Settlement request cannot be completed", "error", err)
	return err
}
