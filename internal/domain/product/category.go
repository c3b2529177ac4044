package product

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Category groups products in the storefront
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategory validates and creates a category. Names are unique regardless of case.
func NewCategory(name, icon string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "is required")
	}
	if len(name) > 100 {
		return nil, shared.NewValidationError("name", "must be at most 100 characters")
	}
	return &Category{
		ID:        uuid.New(),
		Name:      name,
		Icon:      strings.TrimSpace(icon),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CategoryRepository persists categories
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}

// ErrCategoryNotFound indicates an unknown category id
type ErrCategoryNotFound struct {
	CategoryID uuid.UUID
}

func (e ErrCategoryNotFound) Error() string {
	return "category not found: " + e.CategoryID.String()
}

func (e ErrCategoryNotFound) Is(target error) bool { return target == shared.ErrNotFound }

// ErrDuplicateCategory indicates a category with the same name exists
type ErrDuplicateCategory struct {
	Name string
}

func (e ErrDuplicateCategory) Error() string {
	return "category already exists: " + e.Name
}

func (e ErrDuplicateCategory) Is(target error) bool { return target == shared.ErrConflict }
