package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// SettlementRequest asks the settlement worker to verify a top-up with the
// payment gateway and credit the wallet once it is paid.
type SettlementRequest struct {
	UserID          uuid.UUID `json:"user_id"`
	TransactionID   uuid.UUID `json:"transaction_id"`
	ExternalOrderID string    `json:"external_order_id"`
	CorrelationID   string    `json:"correlation_id,omitempty"`
	RequestedAt     time.Time `json:"requested_at"`
}

type correlationKey struct{}

// WithCorrelationID carries a request's correlation id into service calls
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, correlationID)
}

// CorrelationID returns the id stored by WithCorrelationID, or ""
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
