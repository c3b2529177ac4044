package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/domain/shared"
)

func TestProductService_CreateProduct(t *testing.T) {
	category := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepo)
		svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *product.Product) bool {
			return p.Name == "Desk Lamp" && p.Price.Equal(d("1299.00")) && p.Inventory == 4
		})).Return(nil).Once()

		p, err := svc.CreateProduct(context.Background(), " Desk Lamp ", d("1299.00"), 4, &category)
		require.NoError(t, err)
		assert.Equal(t, &category, p.CategoryID)
		repo.AssertExpectations(t)
	})

	testCases := []struct {
		name      string
		title     string
		price     string
		inventory int
	}{
		{"EmptyName", " ", "10", 1},
		{"ZeroPrice", "Lamp", "0", 1},
		{"SubPaisePrice", "Lamp", "10.001", 1},
		{"NegativeInventory", "Lamp", "10", -1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockProductRepo)
			svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))

			_, err := svc.CreateProduct(context.Background(), tc.title, d(tc.price), tc.inventory, nil)
			assert.True(t, errors.Is(err, shared.ErrValidation))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_Restock(t *testing.T) {
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepo)
		svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))
		repo.On("IncrementInventory", mock.Anything, id, 5).Return(&product.Product{ID: id, Inventory: 13}, nil).Once()

		p, err := svc.Restock(context.Background(), id, 5)
		require.NoError(t, err)
		assert.Equal(t, 13, p.Inventory)
		repo.AssertExpectations(t)
	})

	t.Run("NonPositiveQuantity", func(t *testing.T) {
		repo := new(MockProductRepo)
		svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))

		_, err := svc.Restock(context.Background(), id, 0)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		repo.AssertNotCalled(t, "IncrementInventory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		repo := new(MockProductRepo)
		svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))
		repo.On("IncrementInventory", mock.Anything, id, 1).Return(nil, product.ErrProductNotFound{ProductID: id}).Once()

		_, err := svc.Restock(context.Background(), id, 1)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestProductService_Reads(t *testing.T) {
	repo := new(MockProductRepo)
	svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))
	p := &product.Product{ID: uuid.New(), Name: "Mug"}

	repo.On("GetByID", mock.Anything, p.ID).Return(p, nil).Once()
	repo.On("List", mock.Anything, (*uuid.UUID)(nil), 20, 0).Return([]*product.Product{p}, nil).Once()

	got, err := svc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	list, err := svc.ListProducts(context.Background(), nil, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	repo.AssertExpectations(t)
}

func TestProductService_ListByCategory(t *testing.T) {
	category := uuid.New()

	t.Run("KnownCategory", func(t *testing.T) {
		repo, categories := new(MockProductRepo), new(MockCategoryRepo)
		svc := NewProductService(newTestLogger(), repo, categories)
		categories.On("GetByID", mock.Anything, category).Return(&product.Category{ID: category, Name: "Toys"}, nil).Once()
		repo.On("List", mock.Anything, &category, 10, 10).Return([]*product.Product{{ID: uuid.New(), CategoryID: &category}}, nil).Once()

		list, err := svc.ListProducts(context.Background(), &category, 10, 10)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		repo.AssertExpectations(t)
		categories.AssertExpectations(t)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		repo, categories := new(MockProductRepo), new(MockCategoryRepo)
		svc := NewProductService(newTestLogger(), repo, categories)
		categories.On("GetByID", mock.Anything, category).Return(nil, product.ErrCategoryNotFound{CategoryID: category}).Once()

		_, err := svc.ListProducts(context.Background(), &category, 10, 0)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	id := uuid.New()
	name, blank := " Floor Lamp ", "  "
	price, tooPrecise := d("1499.00"), d("1.005")

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepo)
		svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))
		repo.On("Update", mock.Anything, id, mock.MatchedBy(func(c product.Changes) bool {
			return c.Name != nil && *c.Name == "Floor Lamp" && c.Price != nil && c.Price.Equal(price) && c.CategoryID == nil
		})).Return(&product.Product{ID: id, Name: "Floor Lamp", Price: price}, nil).Once()

		p, err := svc.UpdateProduct(context.Background(), id, product.Changes{Name: &name, Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "Floor Lamp", p.Name)
		repo.AssertExpectations(t)
	})

	invalid := []struct {
		name    string
		changes product.Changes
	}{
		{"NoChanges", product.Changes{}},
		{"BlankName", product.Changes{Name: &blank}},
		{"SubPaisePrice", product.Changes{Price: &tooPrecise}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockProductRepo)
			svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))

			_, err := svc.UpdateProduct(context.Background(), id, tc.changes)
			assert.ErrorIs(t, err, shared.ErrValidation)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("UnknownCategory", func(t *testing.T) {
		repo := new(MockProductRepo)
		svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))
		category := uuid.New()
		repo.On("Update", mock.Anything, id, mock.Anything).Return(nil, product.ErrCategoryNotFound{CategoryID: category}).Once()

		_, err := svc.UpdateProduct(context.Background(), id, product.Changes{CategoryID: &category})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	id := uuid.New()
	testCases := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"Success", nil, nil},
		{"Ordered", product.ErrProductInUse{ProductID: id}, shared.ErrConflict},
		{"Missing", product.ErrProductNotFound{ProductID: id}, shared.ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockProductRepo)
			svc := NewProductService(newTestLogger(), repo, new(MockCategoryRepo))
			repo.On("Delete", mock.Anything, id).Return(tc.repoErr).Once()

			err := svc.DeleteProduct(context.Background(), id)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_Categories(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		categories := new(MockCategoryRepo)
		svc := NewProductService(newTestLogger(), new(MockProductRepo), categories)
		categories.On("Create", mock.Anything, mock.MatchedBy(func(c *product.Category) bool {
			return c.Name == "Toys" && c.Icon == "toy.png"
		})).Return(nil).Once()

		c, err := svc.CreateCategory(context.Background(), " Toys ", "toy.png")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, c.ID)
		categories.AssertExpectations(t)
	})

	t.Run("BlankName", func(t *testing.T) {
		categories := new(MockCategoryRepo)
		svc := NewProductService(newTestLogger(), new(MockProductRepo), categories)

		_, err := svc.CreateCategory(context.Background(), " ", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
		categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate", func(t *testing.T) {
		categories := new(MockCategoryRepo)
		svc := NewProductService(newTestLogger(), new(MockProductRepo), categories)
		categories.On("Create", mock.Anything, mock.Anything).Return(product.ErrDuplicateCategory{Name: "Toys"}).Once()

		_, err := svc.CreateCategory(context.Background(), "Toys", "")
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("List", func(t *testing.T) {
		categories := new(MockCategoryRepo)
		svc := NewProductService(newTestLogger(), new(MockProductRepo), categories)
		categories.On("List", mock.Anything).Return([]*product.Category{{Name: "Books"}, {Name: "Toys"}}, nil).Once()

		list, err := svc.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
