package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/payment"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/wallet"
	"github.com/miniguru-commerce/internal/platform/messaging/producers"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

const (
	MessagePaid           = "Payment completed successfully. Wallet balance updated."
	MessageAlreadySettled = "Payment already settled."
	MessageNotAttempted   = "Payment has not been attempted yet"
	messageAttemptedFmt   = "Payment attempted but not completed yet. Amount due: %s %s"

	topUpReference = "wallet_topup"
)

// TopUpIntent is what the client needs to open the gateway checkout
type TopUpIntent struct {
	ExternalOrderID    string          `json:"external_order_id"`
	LocalTransactionID uuid.UUID       `json:"local_transaction_id"`
	Amount             decimal.Decimal `json:"amount"`
	AmountMinor        int64           `json:"amount_minor"`
	Currency           string          `json:"currency"`
}

// SettlementResult reports whether a top-up has been credited
type SettlementResult struct {
	Settled    bool             `json:"settled"`
	NewBalance *decimal.Decimal `json:"new_balance,omitempty"`
	Message    string           `json:"message"`
}

// PaymentServiceImpl bridges the payment gateway and the ledger
type PaymentServiceImpl struct {
	txManager  persistence.TxManager
	walletRepo wallet.Repository
	txnRepo    wallet.TransactionRepository
	ledger     TxLedger
	gateway    PaymentGateway
	retries    producers.MessagePublisher
	currency   string
	logger     *slog.Logger
}

// NewPaymentService wires the service; retries may be nil, in which case
// gateway failures are only reported to the caller
func NewPaymentService(
	logger *slog.Logger,
	txManager persistence.TxManager,
	walletRepo wallet.Repository,
	txnRepo wallet.TransactionRepository,
	ledger TxLedger,
	gateway PaymentGateway,
	retries producers.MessagePublisher,
	currency string,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		txManager:  txManager,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		ledger:     ledger,
		gateway:    gateway,
		retries:    retries,
		currency:   currency,
		logger:     logger,
	}
}

var _ PaymentService = (*PaymentServiceImpl)(nil)

// CreateTopUpIntent opens a PENDING credit and a matching gateway order. If the
// gateway call fails the local transaction is marked FAILED.
func (s *PaymentServiceImpl) CreateTopUpIntent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*TopUpIntent, error) {
	if err := shared.ValidateAmount(amount); err != nil {
		return nil, err
	}
	amountMinor, err := shared.ToMinorUnits(amount)
	if err != nil {
		return nil, shared.NewValidationError("amount", err.Error())
	}

	var pending *wallet.Transaction
	err = s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		txn, err := s.ledger.OpenPendingCredit(ctx, tx, userID, amount, topUpReference)
		if err != nil {
			return err
		}
		pending = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("transaction_id", pending.ID.String(), "correlation_id", shared.CorrelationID(ctx))

	gatewayOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		AmountMinor: amountMinor,
		Currency:    s.currency,
		Receipt:     pending.ID.String(),
		Notes: map[string]string{
			"user_id":        userID.String(),
			"transaction_id": pending.ID.String(),
		},
	})
	if err != nil {
		logger.Error("Gateway order creation failed", "error", err)
		s.failPending(ctx, pending.ID, "gateway order creation failed: "+err.Error())
		return nil, err
	}

	err = s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return s.txnRepo.WithTx(tx).SetExternalOrderID(ctx, pending.ID, gatewayOrder.ID)
	})
	if err != nil {
		// Without the order id the transaction can never be verified, so it must not stay PENDING
		logger.Error("Failed to attach gateway order to transaction", "external_order_id", gatewayOrder.ID, "error", err)
		s.failPending(ctx, pending.ID, "could not record gateway order "+gatewayOrder.ID)
		return nil, fmt.Errorf("failed to attach gateway order %s: %w", gatewayOrder.ID, err)
	}

	logger.Info("Top-up intent created", "external_order_id", gatewayOrder.ID, "amount_minor", amountMinor)
	return &TopUpIntent{
		ExternalOrderID:    gatewayOrder.ID,
		LocalTransactionID: pending.ID,
		Amount:             amount,
		AmountMinor:        amountMinor,
		Currency:           s.currency,
	}, nil
}

func (s *PaymentServiceImpl) failPending(ctx context.Context, transactionID uuid.UUID, reason string) {
	detached := context.WithoutCancel(ctx)
	err := s.txManager.ExecuteTx(detached, func(tx pgx.Tx) error {
		txnRepo := s.txnRepo.WithTx(tx)
		txn, err := txnRepo.LockByID(detached, transactionID)
		if err != nil {
			return err
		}
		if err := txn.Fail(reason); err != nil {
			return err
		}
		return txnRepo.Finalize(detached, txn)
	})
	if err != nil {
		s.logger.Error("Failed to mark top-up transaction FAILED", "transaction_id", transactionID.String(), "error", err)
	}
}

// VerifyAndSettle asks the gateway for the order status and credits the wallet
// once it is paid. Repeated calls never credit twice. Gateway failures leave
// the transaction PENDING and queue a retry for the settlement worker.
func (s *PaymentServiceImpl) VerifyAndSettle(ctx context.Context, userID, transactionID uuid.UUID, externalOrderID string) (*SettlementResult, error) {
	result, err := s.verify(ctx, userID, transactionID, externalOrderID)
	if err != nil && errors.Is(err, shared.ErrGateway) {
		s.queueRetry(ctx, &shared.SettlementRequest{
			UserID:          userID,
			TransactionID:   transactionID,
			ExternalOrderID: externalOrderID,
			CorrelationID:   shared.CorrelationID(ctx),
			RequestedAt:     time.Now().UTC(),
		})
	}
	return result, err
}

func (s *PaymentServiceImpl) SettleRequest(ctx context.Context, request *shared.SettlementRequest) (*SettlementResult, error) {
	return s.verify(ctx, request.UserID, request.TransactionID, request.ExternalOrderID)
}

func (s *PaymentServiceImpl) verify(ctx context.Context, userID, transactionID uuid.UUID, externalOrderID string) (*SettlementResult, error) {
	txn, err := s.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	w, err := s.walletRepo.GetByID(ctx, txn.WalletID)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != userID {
		return nil, shared.ForbiddenError{Resource: "transaction"}
	}
	if txn.Kind != wallet.KindCredit {
		return nil, shared.NewValidationError("transaction_id", "is not a top-up transaction")
	}
	if txn.ExternalOrderID == "" || txn.ExternalOrderID != externalOrderID {
		return nil, shared.NewValidationError("external_order_id", "does not match the transaction")
	}

	switch txn.Status {
	case wallet.StatusCompleted:
		return settledResult(w.Balance, MessageAlreadySettled), nil
	case wallet.StatusFailed:
		return nil, shared.InvalidStateError{Entity: "transaction", From: string(txn.Status), To: string(wallet.StatusCompleted)}
	}

	gatewayOrder, err := s.gateway.FetchOrder(ctx, externalOrderID)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		"transaction_id", transactionID.String(),
		"external_order_id", externalOrderID,
		"gateway_status", string(gatewayOrder.Status),
		"correlation_id", shared.CorrelationID(ctx),
	)

	switch gatewayOrder.Status {
	case payment.OrderPaid:
		return s.settlePaid(ctx, logger, userID, transactionID, gatewayOrder)
	case payment.OrderAttempted:
		due := shared.FromMinorUnits(gatewayOrder.AmountDue).StringFixed(2)
		logger.Info("Payment attempted but not captured")
		return &SettlementResult{Message: fmt.Sprintf(messageAttemptedFmt, due, gatewayOrder.Currency)}, nil
	case payment.OrderCreated:
		return &SettlementResult{Message: MessageNotAttempted}, nil
	default:
		logger.Error("Gateway returned an unknown order status")
		return nil, &shared.GatewayError{
			Provider: "razorpay",
			Op:       "orders.fetch",
			Err:      fmt.Errorf("unknown order status %q", gatewayOrder.Status),
		}
	}
}

// settlePaid re-checks the transaction under a row lock so concurrent
// verifications credit the wallet at most once
func (s *PaymentServiceImpl) settlePaid(ctx context.Context, logger *slog.Logger, userID, transactionID uuid.UUID, gatewayOrder *payment.Order) (*SettlementResult, error) {
	var result *SettlementResult
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.txnRepo.WithTx(tx).LockByID(ctx, transactionID)
		if err != nil {
			return err
		}

		switch locked.Status {
		case wallet.StatusCompleted:
			w, err := s.walletRepo.WithTx(tx).GetByID(ctx, locked.WalletID)
			if err != nil {
				return err
			}
			result = settledResult(w.Balance, MessageAlreadySettled)
			return nil
		case wallet.StatusFailed:
			return shared.InvalidStateError{Entity: "transaction", From: string(locked.Status), To: string(wallet.StatusCompleted)}
		}

		balance, err := s.ledger.SettleCreditInTx(ctx, tx, userID, locked, shared.FromMinorUnits(gatewayOrder.AmountPaid))
		if err != nil {
			return err
		}
		result = settledResult(balance, MessagePaid)
		return nil
	})
	if err != nil {
		logger.Error("Failed to settle paid top-up", "error", err)
		return nil, err
	}

	logger.Info("Top-up settled", "amount_paid_minor", gatewayOrder.AmountPaid, "new_balance", result.NewBalance.StringFixed(2))
	return result, nil
}

func (s *PaymentServiceImpl) queueRetry(ctx context.Context, request *shared.SettlementRequest) {
	if s.retries == nil {
		return
	}
	if err := s.retries.Publish(ctx, request.TransactionID.String(), request); err != nil {
		s.logger.Error("Failed to queue settlement retry",
			"transaction_id", request.TransactionID.String(),
			"error", err,
		)
		return
	}
	s.logger.Info("Settlement retry queued", "transaction_id", request.TransactionID.String())
}

func settledResult(balance decimal.Decimal, message string) *SettlementResult {
	return &SettlementResult{Settled: true, NewBalance: &balance, Message: message}
}
