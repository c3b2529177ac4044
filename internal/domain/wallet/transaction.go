package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Kind is the direction of a balance change
type Kind string

const (
	KindDebit  Kind = "DEBIT"
	KindCredit Kind = "CREDIT"
)

// Status is the lifecycle state of a ledger transaction
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction is one balance-affecting event. It starts PENDING, moves once to
// COMPLETED or FAILED and is immutable afterwards.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	WalletID        uuid.UUID       `json:"wallet_id"`
	Amount          decimal.Decimal `json:"amount"`
	Kind            Kind            `json:"kind"`
	Status          Status          `json:"status"`
	Reference       string          `json:"reference,omitempty"`
	ExternalOrderID string          `json:"external_order_id,omitempty"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// NewTransaction creates a PENDING transaction against a wallet
func NewTransaction(walletID uuid.UUID, kind Kind, amount decimal.Decimal, reference string) (*Transaction, error) {
	if kind != KindDebit && kind != KindCredit {
		return nil, ErrInvalidKind{Kind: kind}
	}
	if err := shared.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return &Transaction{
		ID:        uuid.New(),
		WalletID:  walletID,
		Amount:    amount,
		Kind:      kind,
		Status:    StatusPending,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Transition is the only way a transaction's status changes.
func (t *Transaction) Transition(to Status, reason string) error {
	if t.Status != StatusPending || !to.IsTerminal() {
		return shared.InvalidStateError{Entity: "transaction", From: string(t.Status), To: string(to)}
	}
	now := time.Now().UTC()
	t.Status = to
	t.CompletedAt = &now
	if to == StatusFailed {
		t.FailureReason = reason
	}
	return nil
}

// Complete marks the transaction COMPLETED
func (t *Transaction) Complete() error {
	return t.Transition(StatusCompleted, "")
}

// Fail marks the transaction FAILED with a reason
func (t *Transaction) Fail(reason string) error {
	return t.Transition(StatusFailed, reason)
}

// SettleAmount replaces the amount of a PENDING credit with the amount the
// payment provider actually collected.
func (t *Transaction) SettleAmount(paid decimal.Decimal) error {
	if t.Status != StatusPending {
		return shared.InvalidStateError{Entity: "transaction", From: string(t.Status), To: string(StatusCompleted)}
	}
	if err := shared.ValidateAmount(paid); err != nil {
		return err
	}
	t.Amount = paid
	return nil
}

// Signed returns the amount as it affects the balance
func (t *Transaction) Signed() decimal.Decimal {
	if t.Kind == KindDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
