package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/order"
	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

// OrderServiceImpl settles orders against wallet balance and inventory in one
// database transaction
type OrderServiceImpl struct {
	txManager   persistence.TxManager
	productRepo product.Repository
	orderRepo   order.Repository
	ledger      TxLedger
	logger      *slog.Logger
}

func NewOrderService(
	logger *slog.Logger,
	txManager persistence.TxManager,
	productRepo product.Repository,
	orderRepo order.Repository,
	ledger TxLedger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		txManager:   txManager,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

var _ OrderService = (*OrderServiceImpl)(nil)

// PlaceOrder prices the cart from row-locked products, debits the wallet,
// stores the order and decrements inventory. Any failure rolls all of it back.
func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, userID uuid.UUID, req order.Request) (*order.Order, error) {
	items, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	var placed *order.Order
	err = s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		productRepo := s.productRepo.WithTx(tx)

		locked, err := productRepo.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*product.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}

		lines := make([]order.LineItem, 0, len(items))
		for _, item := range items {
			p, ok := byID[item.ProductID]
			if !ok {
				return product.ErrProductNotFound{ProductID: item.ProductID}
			}
			if err := p.Reserve(item.Quantity); err != nil {
				return err
			}
			lines = append(lines, order.LineItem{ProductID: p.ID, Quantity: item.Quantity, UnitPrice: p.Price})
		}

		o := order.NewOrder(userID, lines, req.DeliveryAddress)
		debit, err := s.ledger.DebitInTx(ctx, tx, userID, o.TotalAmount, "order:"+o.ID.String())
		if err != nil {
			return err
		}
		if err := o.MarkPaid(debit.ID); err != nil {
			return err
		}
		if err := s.orderRepo.WithTx(tx).Create(ctx, o); err != nil {
			return err
		}

		for _, line := range lines {
			if err := productRepo.DecrementInventory(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		placed = o
		return nil
	})
	if err != nil {
		s.logger.Warn("Order placement failed",
			"user_id", userID.String(),
			"items", len(items),
			"error", err,
			"correlation_id", shared.CorrelationID(ctx),
		)
		return nil, err
	}

	s.logger.Info("Order placed",
		"order_id", placed.ID.String(),
		"user_id", userID.String(),
		"total", placed.TotalAmount.StringFixed(2),
		"transaction_id", placed.TransactionID.String(),
		"correlation_id", shared.CorrelationID(ctx),
	)
	return placed, nil
}

func (s *OrderServiceImpl) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(userID) {
		return nil, shared.ForbiddenError{Resource: "order"}
	}
	return o, nil
}

func (s *OrderServiceImpl) ListOrders(ctx context.Context, userID uuid.UUID) ([]*order.Order, error) {
	return s.orderRepo.ListByOwnerID(ctx, userID)
}

func (s *OrderServiceImpl) ListAllOrders(ctx context.Context, limit, offset int) ([]*order.Order, error) {
	return s.orderRepo.List(ctx, limit, offset)
}
