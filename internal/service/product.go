package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/domain/shared"
)

type ProductServiceImpl struct {
	productRepo  product.Repository
	categoryRepo product.CategoryRepository
	logger       *slog.Logger
}

func NewProductService(logger *slog.Logger, productRepo product.Repository, categoryRepo product.CategoryRepository) *ProductServiceImpl {
	return &ProductServiceImpl{productRepo: productRepo, categoryRepo: categoryRepo, logger: logger}
}

var _ ProductService = (*ProductServiceImpl)(nil)

// CreateProduct adds a catalogue item; an unknown category is reported by the
// foreign key rather than a separate lookup
func (s *ProductServiceImpl) CreateProduct(ctx context.Context, name string, price decimal.Decimal, inventory int, categoryID *uuid.UUID) (*product.Product, error) {
	p, err := product.NewProduct(name, price, inventory, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", "product_id", p.ID.String(), "inventory", p.Inventory)
	return p, nil
}

func (s *ProductServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// ListProducts pages through the catalogue. A category filter must name an
// existing category so a typo is a 404 rather than an empty page.
func (s *ProductServiceImpl) ListProducts(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]*product.Product, error) {
	if categoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *categoryID); err != nil {
			return nil, err
		}
	}
	return s.productRepo.List(ctx, categoryID, limit, offset)
}

// UpdateProduct edits name, price or category. Prices already charged on
// orders are unaffected: order lines keep their own unit price.
func (s *ProductServiceImpl) UpdateProduct(ctx context.Context, id uuid.UUID, changes product.Changes) (*product.Product, error) {
	changes, err := changes.Normalize()
	if err != nil {
		return nil, err
	}
	p, err := s.productRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Product updated", "product_id", id.String())
	return p, nil
}

// DeleteProduct removes a product nobody has ordered yet
func (s *ProductServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", "product_id", id.String())
	return nil
}

// Restock adds units to a product's inventory
func (s *ProductServiceImpl) Restock(ctx context.Context, id uuid.UUID, quantity int) (*product.Product, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "must be greater than zero")
	}
	p, err := s.productRepo.IncrementInventory(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Product restocked", "product_id", id.String(), "added", quantity, "inventory", p.Inventory)
	return p, nil
}

func (s *ProductServiceImpl) CreateCategory(ctx context.Context, name, icon string) (*product.Category, error) {
	c, err := product.NewCategory(name, icon)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Category created", "category_id", c.ID.String(), "name", c.Name)
	return c, nil
}

func (s *ProductServiceImpl) ListCategories(ctx context.Context) ([]*product.Category, error) {
	return s.categoryRepo.List(ctx)
}
