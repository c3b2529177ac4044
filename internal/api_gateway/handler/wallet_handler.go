package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/service"
)

// WalletHandler serves the caller's wallet, its transaction log and top-ups
type WalletHandler struct {
	ledger   service.LedgerService
	payments service.PaymentService
	logger   *slog.Logger
}

func NewWalletHandler(logger *slog.Logger, ledger service.LedgerService, payments service.PaymentService) *WalletHandler {
	return &WalletHandler{
		ledger:   ledger,
		payments: payments,
		logger:   logger,
	}
}

// Create opens an empty wallet for the caller
func (h *WalletHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	w, err := h.ledger.CreateWallet(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create wallet")
		return
	}
	RespondCreated(c, toWalletResponse(w))
}

func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	w, err := h.ledger.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get wallet")
		return
	}
	RespondOK(c, toWalletResponse(w))
}

// ListTransactions returns the caller's transaction log, newest first
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	pagination, ok := h.bindPagination(c)
	if !ok {
		return
	}

	txns, total, err := h.ledger.ListTransactions(c.Request.Context(), userID, pagination.PerPage, pagination.Offset())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list transactions")
		return
	}

	transactions := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		transactions = append(transactions, toTransactionResponse(txn))
	}
	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}

// History reads the projected history of completed transactions
func (h *WalletHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	pagination, ok := h.bindPagination(c)
	if !ok {
		return
	}

	entries, total, err := h.ledger.ListHistory(c.Request.Context(), userID, pagination.PerPage, pagination.Offset())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to read wallet history")
		return
	}
	RespondWithPaginatedData(c, http.StatusOK, entries, pagination.Page, pagination.PerPage, int(total))
}

// CreateTopUp opens a gateway order for adding funds
func (h *WalletHandler) CreateTopUp(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateTopUpRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	intent, err := h.payments.CreateTopUpIntent(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to create top-up")
		return
	}
	RespondCreated(c, toTopUpResponse(intent))
}

// VerifyTopUp settles a top-up once the gateway reports it paid
func (h *WalletHandler) VerifyTopUp(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req VerifyTopUpRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.payments.VerifyAndSettle(c.Request.Context(), userID, transactionID, req.ExternalOrderID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to verify top-up")
		return
	}
	RespondOK(c, toSettlementResponse(result))
}

func (h *WalletHandler) bindPagination(c *gin.Context) (PaginationParams, bool) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return pagination, false
	}
	return pagination, true
}
