// Package ledger holds the read-side history of completed wallet transactions.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/wallet"
)

// Entry is one projected wallet transaction. Amount and BalanceAfter are
// decimal strings so the projection never loses precision.
type Entry struct {
	TransactionID uuid.UUID     `json:"transaction_id" bson:"transaction_id"`
	WalletID      uuid.UUID     `json:"wallet_id" bson:"wallet_id"`
	OwnerID       uuid.UUID     `json:"owner_id" bson:"owner_id"`
	Kind          wallet.Kind   `json:"kind" bson:"kind"`
	Amount        string        `json:"amount" bson:"amount"`
	BalanceAfter  string        `json:"balance_after" bson:"balance_after"`
	Status        wallet.Status `json:"status" bson:"status"`
	Reference     string        `json:"reference,omitempty" bson:"reference,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CorrelationID string        `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	ProjectedAt   *time.Time    `json:"projected_at,omitempty" bson:"projected_at,omitempty"`
}

// NewEntry builds the history entry for a transaction that reached a terminal state
func NewEntry(txn *wallet.Transaction, ownerID uuid.UUID, balanceAfter string, correlationID string) *Entry {
	return &Entry{
		TransactionID: txn.ID,
		WalletID:      txn.WalletID,
		OwnerID:       ownerID,
		Kind:          txn.Kind,
		Amount:        txn.Amount.StringFixed(2),
		BalanceAfter:  balanceAfter,
		Status:        txn.Status,
		Reference:     txn.Reference,
		FailureReason: txn.FailureReason,
		CorrelationID: correlationID,
		CreatedAt:     txn.CreatedAt,
	}
}
