package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

const categoryColumns = `id, name, icon, created_at`

// CategoryRepository implements product.CategoryRepository for PostgreSQL
type CategoryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewCategoryRepository(logger *slog.Logger, db *persistence.PostgresDB) product.CategoryRepository {
	return &CategoryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a category; the name index is case-insensitive
func (r *CategoryRepository) Create(ctx context.Context, c *product.Category) error {
	query := `
		INSERT INTO product_categories (id, name, icon, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.querier.Exec(ctx, query, c.ID, c.Name, c.Icon, c.CreatedAt); err != nil {
		if persistence.IsUniqueViolation(err) {
			return product.ErrDuplicateCategory{Name: c.Name}
		}
		r.logger.Error("Failed to create category", "name", c.Name, "error", err)
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM product_categories WHERE id = $1`

	var c product.Category
	err := r.querier.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrCategoryNotFound{CategoryID: id}
		}
		r.logger.Error("Failed to get category", "category_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// List returns every category by name; the set is small enough to skip paging
func (r *CategoryRepository) List(ctx context.Context) ([]*product.Category, error) {
	rows, err := r.querier.Query(ctx, `SELECT `+categoryColumns+` FROM product_categories ORDER BY name`)
	if err != nil {
		r.logger.Error("Failed to query categories", "error", err)
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*product.Category, error) {
		var c product.Category
		err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt)
		return &c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}
