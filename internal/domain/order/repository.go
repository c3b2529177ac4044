package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Repository persists orders together with their line items
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Order, error)
	List(ctx context.Context, limit, offset int) ([]*Order, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrOrderNotFound indicates a missing order
type ErrOrderNotFound struct {
	OrderID uuid.UUID
}

func (e ErrOrderNotFound) Error() string {
	return "order not found: " + e.OrderID.String()
}

func (e ErrOrderNotFound) Is(target error) bool { return target == shared.ErrNotFound }
