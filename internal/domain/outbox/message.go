package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/shared"
)

// EventLedgerEntry is the only event type written today
const EventLedgerEntry = "wallet.transaction.finalized"

// Message is written in the same database transaction as the state change it
// describes and relayed later by the outbox poller.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	WalletID      uuid.UUID           `json:"wallet_id"`
	EventType     string              `json:"event_type"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewLedgerMessage wraps a history entry for the outbox
func NewLedgerMessage(entry *ledger.Entry) (*Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: entry.TransactionID,
		WalletID:      entry.WalletID,
		EventType:     EventLedgerEntry,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// LedgerEntry decodes the payload of a ledger event
func (m *Message) LedgerEntry() (*ledger.Entry, error) {
	if m.EventType != EventLedgerEntry {
		return nil, fmt.Errorf("outbox message %d has event type %q, not a ledger entry", m.ID, m.EventType)
	}
	var entry ledger.Entry
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, fmt.Errorf("decode ledger entry of outbox message %d: %w", m.ID, err)
	}
	if entry.TransactionID != m.TransactionID {
		return nil, fmt.Errorf("outbox message %d payload is for transaction %s", m.ID, entry.TransactionID)
	}
	return &entry, nil
}
