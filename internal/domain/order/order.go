// Package order models placed orders and their payment lifecycle.
package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// PaymentStatus tracks the debit backing an order
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED" // reserved for reversals; placement failures roll back instead
)

// LineItem is a (product, quantity) pair. UnitPrice is the price charged at
// order time.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Total is unit price × quantity
func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is immutable once its payment is COMPLETED
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	LineItems       []LineItem      `json:"line_items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	TransactionID   uuid.UUID       `json:"transaction_id"`
	DeliveryAddress string          `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Request is a cart as submitted by the client
type Request struct {
	Items           []RequestedItem
	DeliveryAddress string
}

// RequestedItem is one cart line before pricing
type RequestedItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// Normalize validates the cart and merges duplicate products, keeping first-seen order.
func (r Request) Normalize() ([]RequestedItem, error) {
	if len(r.Items) == 0 {
		return nil, shared.NewValidationError("line_items", "must contain at least one item")
	}
	if strings.TrimSpace(r.DeliveryAddress) == "" {
		return nil, shared.NewValidationError("delivery_address", "is required")
	}

	merged := make([]RequestedItem, 0, len(r.Items))
	index := make(map[uuid.UUID]int, len(r.Items))
	for _, item := range r.Items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("product_id", "is required")
		}
		if item.Quantity <= 0 {
			return nil, shared.NewValidationError("quantity", "must be greater than zero")
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// NewOrder creates a PENDING order whose total is the sum of its priced lines
func NewOrder(ownerID uuid.UUID, items []LineItem, deliveryAddress string) *Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return &Order{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		LineItems:       items,
		TotalAmount:     total,
		PaymentStatus:   PaymentPending,
		DeliveryAddress: strings.TrimSpace(deliveryAddress),
		CreatedAt:       time.Now().UTC(),
	}
}

// MarkPaid binds the completed debit transaction and moves the order to COMPLETED
func (o *Order) MarkPaid(transactionID uuid.UUID) error {
	if o.PaymentStatus != PaymentPending {
		return shared.InvalidStateError{Entity: "order", From: string(o.PaymentStatus), To: string(PaymentCompleted)}
	}
	if transactionID == uuid.Nil {
		return shared.NewValidationError("transaction_id", "is required")
	}
	o.TransactionID = transactionID
	o.PaymentStatus = PaymentCompleted
	return nil
}

// OwnedBy reports whether userID placed the order
func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o.OwnerID == userID
}
