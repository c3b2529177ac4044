package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/order"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

const orderColumns = `id, owner_id, total_amount, payment_status, transaction_id, delivery_address, created_at`

// OrderRepository implements the order.Repository interface for PostgreSQL.
// Line items live in order_items keyed by (order_id, position).
type OrderRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(logger *slog.Logger, db *persistence.PostgresDB) order.Repository {
	return &OrderRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *OrderRepository) WithTx(tx pgx.Tx) order.Repository {
	return &OrderRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores the order header and its line items. It must run inside a
// transaction for the two inserts to be atomic.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (id, owner_id, total_amount, payment_status, transaction_id, delivery_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		o.ID,
		o.OwnerID,
		o.TotalAmount,
		o.PaymentStatus,
		o.TransactionID,
		o.DeliveryAddress,
		o.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", "order_id", o.ID.String(), "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, item := range o.LineItems {
		if _, err := r.querier.Exec(ctx, itemQuery, o.ID, i, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			r.logger.Error("Failed to create order item",
				"order_id", o.ID.String(),
				"product_id", item.ProductID.String(),
				"error", err,
			)
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an order with its line items
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound{OrderID: id}
		}
		r.logger.Error("Failed to get order", "order_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.attachItems(ctx, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByOwnerID returns the user's orders, newest first
func (r *OrderRepository) ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC, id`
	return r.list(ctx, query, ownerID)
}

// List returns a page of all orders, newest first
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*order.Order, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			r.logger.Error("Failed to scan order", "error", err)
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads line items for all orders with one query
func (r *OrderRepository) attachItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.LineItems = make([]order.LineItem, 0)
	}

	query := `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.querier.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("Failed to get order items", "error", err)
		return fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item order.LineItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			r.logger.Error("Failed to scan order item", "error", err)
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.LineItems = append(o.LineItems, item)
		}
	}

	return rows.Err()
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID,
		&o.OwnerID,
		&o.TotalAmount,
		&o.PaymentStatus,
		&o.TransactionID,
		&o.DeliveryAddress,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
