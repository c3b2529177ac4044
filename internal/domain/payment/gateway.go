// Package payment describes orders on the external payment gateway. Amounts
// here are integers in minor units (paise); conversion to wallet amounts
// happens only where the gateway meets the ledger.
package payment

// OrderStatus is the gateway's view of a payment order
type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderAttempted OrderStatus = "attempted"
	OrderPaid      OrderStatus = "paid"
)

// CreateOrderRequest asks the gateway to open a payment order
type CreateOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is a payment order as reported by the gateway
type Order struct {
	ID         string
	Status     OrderStatus
	Amount     int64
	AmountPaid int64
	AmountDue  int64
	Currency   string
	Receipt    string
}
