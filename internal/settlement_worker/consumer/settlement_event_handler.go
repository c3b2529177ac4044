package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/platform/messaging/producers"
	"github.com/miniguru-commerce/internal/settlement_worker/service"
)

// SettlementEventHandler handles settlement retry messages from Kafka
type SettlementEventHandler struct {
	settler  service.Settler
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewSettlementEventHandler accepts a nil producer when dead-lettering is disabled
func NewSettlementEventHandler(
	logger *slog.Logger,
	settler service.Settler,
	producer producers.DeadLetterPublisher,
) *SettlementEventHandler {
	return &SettlementEventHandler{
		settler:  settler,
		producer: producer,
		logger:   logger,
	}
}

// HandleMessage returns nil when the offset may be committed
func (h *SettlementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.SettlementRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.deadLetter(ctx, h.logger, key, value, "Failed to unmarshal settlement request", err)
	}
	if request.TransactionID == uuid.Nil || request.UserID == uuid.Nil || request.ExternalOrderID == "" {
		return h.deadLetter(ctx, h.logger, key, value, "Settlement request is incomplete", errors.New("missing transaction, user or external order id"))
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}
	logger.Info("Received settlement request",
		"transaction_id", request.TransactionID.String(),
		"external_order_id", request.ExternalOrderID,
		"requested_at", request.RequestedAt,
	)

	err := h.settler.Settle(ctx, &request)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		// Shutting down; leave the offset for the next consumer
		return fmt.Errorf("settlement of %s interrupted: %w", request.TransactionID, err)
	}

	var exhausted service.ErrRetriesExhausted
	if h.producer == nil && errors.As(err, &exhausted) {
		return fmt.Errorf("settlement of %s failed: %w", request.TransactionID, err)
	}
	return h.deadLetter(ctx, logger, key, value, "Settlement failed", err)
}

// deadLetter parks the message. Without a DLQ the message is dropped after logging.
func (h *SettlementEventHandler) deadLetter(ctx context.Context, logger *slog.Logger, key, value []byte, msg string, cause error) error {
	logger.Error(msg, "error", cause, "message_key", string(key))
	if h.producer == nil {
		logger.Warn("DLQ disabled, dropping settlement message", "message_key", string(key))
		return nil
	}

	reason := fmt.Sprintf("%s: %s", msg, cause.Error())
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("%s and DLQ publish failed: %w", msg, err)
	}
	logger.Info("Published unprocessable settlement message to DLQ", "message_key", string(key), "reason", reason)
	return nil
}
