package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/order"
	"github.com/miniguru-commerce/internal/service"
)

// OrderHandler handles checkout and order reads
type OrderHandler struct {
	orders service.OrderService
	logger *slog.Logger
}

func NewOrderHandler(logger *slog.Logger, orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// Place settles the cart against the caller's wallet
func (h *OrderHandler) Place(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	items := make([]order.RequestedItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			RespondBadRequest(c, "Invalid product ID")
			return
		}
		items = append(items, order.RequestedItem{ProductID: productID, Quantity: item.Quantity})
	}

	o, err := h.orders.PlaceOrder(c.Request.Context(), userID, order.Request{
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to place order")
		return
	}
	RespondCreated(c, toOrderResponse(o))
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list orders")
		return
	}
	RespondOK(c, toOrderResponses(orders))
}

// Get returns one of the caller's orders; other users' orders are forbidden
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get order")
		return
	}
	RespondOK(c, toOrderResponse(o))
}

// ListAll is the admin view over every order
func (h *OrderHandler) ListAll(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	orders, err := h.orders.ListAllOrders(c.Request.Context(), pagination.PerPage, pagination.Offset())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list all orders")
		return
	}
	RespondOK(c, toOrderResponses(orders))
}
