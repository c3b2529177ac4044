package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Repository persists products
type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// List returns a page ordered by name, restricted to categoryID when it is set
	List(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]*Product, error)
	// Update applies changes atomically and returns the stored row
	Update(ctx context.Context, id uuid.UUID, changes Changes) (*Product, error)
	// Delete removes a product that no order references
	Delete(ctx context.Context, id uuid.UUID) error

	// LockByIDs row-locks the given products in id order and returns the ones found
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// DecrementInventory is a compare-and-decrement: it fails with
	// ErrInsufficientInventory rather than letting inventory go negative
	DecrementInventory(ctx context.Context, id uuid.UUID, quantity int) error
	IncrementInventory(ctx context.Context, id uuid.UUID, quantity int) (*Product, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrProductNotFound indicates an unknown product id
type ErrProductNotFound struct {
	ProductID uuid.UUID
}

func (e ErrProductNotFound) Error() string {
	return "product not found: " + e.ProductID.String()
}

func (e ErrProductNotFound) Is(target error) bool { return target == shared.ErrNotFound }

// ErrInsufficientInventory indicates a line item exceeding available stock
type ErrInsufficientInventory struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e ErrInsufficientInventory) Error() string {
	return fmt.Sprintf("insufficient inventory for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e ErrInsufficientInventory) Is(target error) bool {
	return target == shared.ErrInsufficientInventory
}

// ErrProductInUse indicates a product that past orders still reference
type ErrProductInUse struct {
	ProductID uuid.UUID
}

func (e ErrProductInUse) Error() string {
	return "product has been ordered and cannot be deleted: " + e.ProductID.String()
}

func (e ErrProductInUse) Is(target error) bool { return target == shared.ErrConflict }
