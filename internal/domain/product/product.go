// Package product models the sellable catalogue and its inventory.
package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Product is a catalogue item with a live inventory count
type Product struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Inventory  int             `json:"inventory"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewProduct validates and creates a product
func NewProduct(name string, price decimal.Decimal, inventory int, categoryID *uuid.UUID) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "is required")
	}
	if err := shared.ValidateAmount(price); err != nil {
		return nil, shared.NewValidationError("price", "must be a positive amount with at most two decimal places")
	}
	if inventory < 0 {
		return nil, shared.NewValidationError("inventory", "must not be negative")
	}
	now := time.Now().UTC()
	return &Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      price,
		Inventory:  inventory,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Reserve checks that quantity units are available
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "must be greater than zero")
	}
	if quantity > p.Inventory {
		return ErrInsufficientInventory{ProductID: p.ID, Requested: quantity, Available: p.Inventory}
	}
	return nil
}

// Changes is a partial product edit; nil fields keep their stored value.
// Inventory only moves through Restock and order placement.
type Changes struct {
	Name       *string
	Price      *decimal.Decimal
	CategoryID *uuid.UUID
}

// Normalize validates the edit and trims the name
func (c Changes) Normalize() (Changes, error) {
	if c.Name == nil && c.Price == nil && c.CategoryID == nil {
		return c, shared.NewValidationError("", "at least one of name, price or category_id is required")
	}
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" {
			return c, shared.NewValidationError("name", "must not be empty")
		}
		c.Name = &name
	}
	if c.Price != nil {
		if err := shared.ValidateAmount(*c.Price); err != nil {
			return c, shared.NewValidationError("price", "must be a positive amount with at most two decimal places")
		}
	}
	return c, nil
}
