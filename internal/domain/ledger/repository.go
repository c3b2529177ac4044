package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Repository stores projected history entries
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Entry, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.TransactionID.String()
}

// Is matches any ErrEntryNotFound when the target has no id, and the NotFound kind
func (e ErrEntryNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	return t.TransactionID == uuid.Nil || e.TransactionID == t.TransactionID
}

// ErrDuplicateEntry indicates the transaction was already projected
type ErrDuplicateEntry struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.TransactionID.String()
}

func (e ErrDuplicateEntry) Is(target error) bool {
	if target == shared.ErrConflict {
		return true
	}
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	return t.TransactionID == uuid.Nil || e.TransactionID == t.TransactionID
}
