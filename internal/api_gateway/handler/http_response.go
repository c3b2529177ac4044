package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/miniguru-commerce/internal/api_gateway/middleware"
)

// Response is the envelope of every API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo carries a machine-readable code and a message safe to show users
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo describes the page returned by list endpoints
type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
}

func newMeta(page, perPage, totalItems int) *MetaInfo {
	totalPages := 0
	if perPage > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}
	return &MetaInfo{Page: page, PerPage: perPage, TotalPages: totalPages, TotalItems: totalItems}
}

// respond stamps the correlation id and writes the envelope
func respond(c *gin.Context, status int, response *Response) {
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(status, response)
}

// RespondWithError writes an error envelope
func RespondWithError(c *gin.Context, status int, code, message string) {
	respond(c, status, &Response{Error: &ErrorInfo{Code: code, Message: message}})
}

// RespondWithPaginatedData writes a page of items with its meta block
func RespondWithPaginatedData(c *gin.Context, status int, data interface{}, page, perPage, totalItems int) {
	respond(c, status, &Response{Data: data, Meta: newMeta(page, perPage, totalItems)})
}

func RespondOK(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, &Response{Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, &Response{Data: data})
}

// RespondAccepted is used when the outcome is deliberately not revealed
func RespondAccepted(c *gin.Context, data interface{}) {
	respond(c, http.StatusAccepted, &Response{Data: data})
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Forbidden"
	}
	RespondWithError(c, http.StatusForbidden, "FORBIDDEN", message)
}

func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

func RespondConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, "CONFLICT", message)
}

// RespondUnprocessable is for a well-formed request the current state cannot satisfy,
// such as an order the wallet cannot pay for
func RespondUnprocessable(c *gin.Context, code, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, code, message)
}

// RespondBadGateway hides provider details behind a retryable message
func RespondBadGateway(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadGateway, "GATEWAY_ERROR", message)
}

func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}
