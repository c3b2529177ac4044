package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/miniguru-commerce/internal/domain/order"
	"github.com/miniguru-commerce/internal/domain/product"
	"github.com/miniguru-commerce/internal/domain/video"
	"github.com/miniguru-commerce/internal/domain/wallet"
	"github.com/miniguru-commerce/internal/service"
)

// Money is rendered as a decimal string with two places
func money(d decimal.Decimal) string { return d.StringFixed(2) }

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toWalletResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		OwnerID:   w.OwnerID.String(),
		Balance:   money(w.Balance),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

// TransactionResponse represents a wallet transaction in API responses
type TransactionResponse struct {
	TransactionID   string `json:"transaction_id"`
	WalletID        string `json:"wallet_id"`
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	Status          string `json:"status"`
	Reference       string `json:"reference,omitempty"`
	ExternalOrderID string `json:"external_order_id,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
	CreatedAt       string `json:"created_at"`
	CompletedAt     string `json:"completed_at,omitempty"`
}

func toTransactionResponse(txn *wallet.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.ID.String(),
		WalletID:        txn.WalletID.String(),
		Kind:            string(txn.Kind),
		Amount:          money(txn.Amount),
		Status:          string(txn.Status),
		Reference:       txn.Reference,
		ExternalOrderID: txn.ExternalOrderID,
		FailureReason:   txn.FailureReason,
		CreatedAt:       txn.CreatedAt.Format(time.RFC3339),
		CompletedAt:     formatTime(txn.CompletedAt),
	}
}

// CreateTopUpRequest asks for a gateway order for amount (major units)
type CreateTopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TopUpResponse is what the client passes to the gateway checkout
type TopUpResponse struct {
	ExternalOrderID    string `json:"external_order_id"`
	LocalTransactionID string `json:"local_transaction_id"`
	Amount             string `json:"amount"`
	AmountMinor        int64  `json:"amount_minor"`
	Currency           string `json:"currency"`
}

func toTopUpResponse(intent *service.TopUpIntent) TopUpResponse {
	return TopUpResponse{
		ExternalOrderID:    intent.ExternalOrderID,
		LocalTransactionID: intent.LocalTransactionID.String(),
		Amount:             money(intent.Amount),
		AmountMinor:        intent.AmountMinor,
		Currency:           intent.Currency,
	}
}

// VerifyTopUpRequest identifies the top-up to settle
type VerifyTopUpRequest struct {
	TransactionID   string `json:"transaction_id" binding:"required,uuid"`
	ExternalOrderID string `json:"external_order_id" binding:"required"`
}

// SettlementResponse reports the outcome of a verification
type SettlementResponse struct {
	Settled    bool   `json:"settled"`
	NewBalance string `json:"new_balance,omitempty"`
	Message    string `json:"message"`
}

func toSettlementResponse(result *service.SettlementResult) SettlementResponse {
	resp := SettlementResponse{Settled: result.Settled, Message: result.Message}
	if result.NewBalance != nil {
		resp.NewBalance = money(*result.NewBalance)
	}
	return resp
}

// PlaceOrderRequest is a cart submitted for checkout
type PlaceOrderRequest struct {
	LineItems       []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	DeliveryAddress string            `json:"delivery_address" binding:"required"`
}

type LineItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	LineItems       []LineItemResponse `json:"line_items"`
	TotalAmount     string             `json:"total_amount"`
	PaymentStatus   string             `json:"payment_status"`
	TransactionID   string             `json:"transaction_id"`
	DeliveryAddress string             `json:"delivery_address"`
	CreatedAt       string             `json:"created_at"`
}

type LineItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]LineItemResponse, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		items = append(items, LineItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
		})
	}
	return OrderResponse{
		ID:              o.ID.String(),
		OwnerID:         o.OwnerID.String(),
		LineItems:       items,
		TotalAmount:     money(o.TotalAmount),
		PaymentStatus:   string(o.PaymentStatus),
		TransactionID:   o.TransactionID.String(),
		DeliveryAddress: o.DeliveryAddress,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
}

func toOrderResponses(orders []*order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// CreateProductRequest adds a catalogue item
type CreateProductRequest struct {
	Name       string          `json:"name" binding:"required"`
	Price      decimal.Decimal `json:"price"`
	Inventory  int             `json:"inventory" binding:"min=0"`
	CategoryID string          `json:"category_id,omitempty" binding:"omitempty,uuid"`
}

// UpdateProductRequest edits a product; omitted fields are left unchanged
type UpdateProductRequest struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	CategoryID *string          `json:"category_id" binding:"omitempty,uuid"`
}

// ProductListParams narrows the catalogue listing
type ProductListParams struct {
	PaginationParams
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Icon string `json:"icon"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toCategoryResponse(c *product.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// RestockRequest adds inventory to a product
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Inventory  int    `json:"inventory"`
	CategoryID string `json:"category_id,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toProductResponse(p *product.Product) ProductResponse {
	resp := ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Price:     money(p.Price),
		Inventory: p.Inventory,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.CategoryID != nil {
		resp.CategoryID = p.CategoryID.String()
	}
	return resp
}

// SubmitVideoRequest registers an upload already stored under the upload directory
type SubmitVideoRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Tags         string `json:"tags"` // comma separated
	FileName     string `json:"file_name" binding:"required"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
}

type ApproveVideoRequest struct {
	PrivacyStatus string `json:"privacy_status"`
}

type RejectVideoRequest struct {
	Reason string `json:"reason"`
}

// VideoResponse represents a submission in API responses
type VideoResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Tags            []string `json:"tags"`
	UploaderID      string   `json:"uploader_id"`
	OriginalName    string   `json:"original_name,omitempty"`
	FileSize        int64    `json:"file_size"`
	MimeType        string   `json:"mime_type,omitempty"`
	Status          string   `json:"status"`
	PrivacyStatus   string   `json:"privacy_status,omitempty"`
	YouTubeVideoID  string   `json:"youtube_video_id,omitempty"`
	YouTubeURL      string   `json:"youtube_url,omitempty"`
	RejectionReason string   `json:"rejection_reason,omitempty"`
	SubmittedAt     string   `json:"submitted_at"`
	ApprovedAt      string   `json:"approved_at,omitempty"`
	RejectedAt      string   `json:"rejected_at,omitempty"`
}

func toVideoResponse(v *video.PendingVideo) VideoResponse {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return VideoResponse{
		ID:              v.ID.String(),
		Title:           v.Title,
		Description:     v.Description,
		Category:        v.Category,
		Tags:            tags,
		UploaderID:      v.UploaderID.String(),
		OriginalName:    v.OriginalName,
		FileSize:        v.Size,
		MimeType:        v.MimeType,
		Status:          string(v.Status),
		PrivacyStatus:   string(v.PrivacyStatus),
		YouTubeVideoID:  v.YouTubeVideoID,
		YouTubeURL:      v.YouTubeURL,
		RejectionReason: v.RejectionReason,
		SubmittedAt:     v.SubmittedAt.Format(time.RFC3339),
		ApprovedAt:      formatTime(v.ApprovedAt),
		RejectedAt:      formatTime(v.RejectedAt),
	}
}

func toVideoResponses(videos []*video.PendingVideo) []VideoResponse {
	out := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, toVideoResponse(v))
	}
	return out
}

// PasswordResetRequest starts a reset for an email address
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest redeems a reset token
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func (p PaginationParams) Offset() int { return (p.Page - 1) * p.PerPage }
