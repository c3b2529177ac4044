package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/service"
)

type ProductHandler struct {
	products service.ProductService
	logger   *slog.Logger
}

func NewProductHandler(logger *slog.Logger, products service.ProductService) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			RespondBadRequest(c, "Invalid category ID")
			return
		}
		categoryID = &id
	}

	p, err := h.products.CreateProduct(c.Request.Context(), req.Name, req.Price, req.Inventory, categoryID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create product")
		return
	}
	RespondCreated(c, toProductResponse(p))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get product")
		return
	}
	RespondOK(c, toProductResponse(p))
}

func (h *ProductHandler) List(c *gin.Context) {
	var params ProductListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return
	}
	var categoryID *uuid.UUID
	if params.CategoryID != "" {
		id := uuid.MustParse(params.CategoryID)
		categoryID = &id
	}

	products, err := h.products.ListProducts(c.Request.Context(), categoryID, params.PerPage, params.Offset())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list products")
		return
	}
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	RespondOK(c, resp)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	changes := product.Changes{Name: req.Name, Price: req.Price}
	if req.CategoryID != nil {
		categoryID := uuid.MustParse(*req.CategoryID)
		changes.CategoryID = &categoryID
	}

	p, err := h.products.UpdateProduct(c.Request.Context(), id, changes)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to update product")
		return
	}
	RespondOK(c, toProductResponse(p))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) Restock(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	var req RestockRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	p, err := h.products.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to restock product")
		return
	}
	RespondOK(c, toProductResponse(p))
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	category, err := h.products.CreateCategory(c.Request.Context(), req.Name, req.Icon)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create category")
		return
	}
	RespondCreated(c, toCategoryResponse(category))
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.products.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list categories")
		return
	}
	resp := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, toCategoryResponse(category))
	}
	RespondOK(c, resp)
}
