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

const productColumns = `id, name, price, inventory, category_id, created_at, updated_at`

// ProductRepository implements the product.Repository interface for PostgreSQL
type ProductRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(logger *slog.Logger, db *persistence.PostgresDB) product.Repository {
	return &ProductRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *ProductRepository) WithTx(tx pgx.Tx) product.Repository {
	return &ProductRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new product
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (id, name, price, inventory, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query, p.ID, p.Name, p.Price, p.Inventory, p.CategoryID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if persistence.IsForeignKeyViolation(err) && p.CategoryID != nil {
			return product.ErrCategoryNotFound{CategoryID: *p.CategoryID}
		}
		r.logger.Error("Failed to create product", "name", p.Name, "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound{ProductID: id}
		}
		r.logger.Error("Failed to get product", "product_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// List returns a page of the catalogue ordered by name, optionally within one category
func (r *ProductRepository) List(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]*product.Product, error) {
	if categoryID == nil {
		query := `SELECT ` + productColumns + ` FROM products ORDER BY name, id LIMIT $1 OFFSET $2`
		return r.query(ctx, query, limit, offset)
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`
	return r.query(ctx, query, *categoryID, limit, offset)
}

// Update overwrites the fields present in changes in a single statement, so
// it never races a concurrent restock or order
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, changes product.Changes) (*product.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($1, name),
		    price = COALESCE($2, price),
		    category_id = COALESCE($3, category_id),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING ` + productColumns

	p, err := scanProduct(r.querier.QueryRow(ctx, query, changes.Name, changes.Price, changes.CategoryID, id))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, product.ErrProductNotFound{ProductID: id}
		case persistence.IsForeignKeyViolation(err) && changes.CategoryID != nil:
			return nil, product.ErrCategoryNotFound{CategoryID: *changes.CategoryID}
		}
		r.logger.Error("Failed to update product", "product_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// Delete removes the product. Ordered products stay: order_items keeps its
// foreign key so past orders remain readable.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if persistence.IsForeignKeyViolation(err) {
			return product.ErrProductInUse{ProductID: id}
		}
		r.logger.Error("Failed to delete product", "product_id", id.String(), "error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return product.ErrProductNotFound{ProductID: id}
	}
	return nil
}

// LockByIDs locks the requested rows. Locks are always taken in id order so two
// orders sharing products cannot deadlock each other.
func (r *ProductRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	return r.query(ctx, query, ids)
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...interface{}) ([]*product.Product, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query products", "error", err)
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product", "error", err)
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over products: %w", err)
	}

	return products, nil
}

// DecrementInventory removes quantity units only while enough remain
func (r *ProductRepository) DecrementInventory(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET inventory = inventory - $1, updated_at = NOW()
		WHERE id = $2 AND inventory >= $1
	`

	result, err := r.querier.Exec(ctx, query, quantity, id)
	if err != nil {
		r.logger.Error("Failed to decrement inventory", "product_id", id.String(), "error", err)
		return fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return product.ErrInsufficientInventory{ProductID: id, Requested: quantity, Available: p.Inventory}
}

// IncrementInventory restocks a product and returns the updated row
func (r *ProductRepository) IncrementInventory(ctx context.Context, id uuid.UUID, quantity int) (*product.Product, error) {
	query := `
		UPDATE products
		SET inventory = inventory + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + productColumns

	p, err := scanProduct(r.querier.QueryRow(ctx, query, quantity, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound{ProductID: id}
		}
		r.logger.Error("Failed to increment inventory", "product_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to increment inventory: %w", err)
	}

	return p, nil
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Inventory,
		&p.CategoryID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
