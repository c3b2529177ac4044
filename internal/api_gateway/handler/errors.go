package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/api_gateway/middleware"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/video"
)

const (
	paymentProviderUnavailable = "payment provider unavailable, please try again"
	videoProviderUnavailable   = "video provider unavailable, please try again"
)

// respondServiceError maps a service error kind to its HTTP status. Internal and
// provider details are logged, never returned.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		RespondForbidden(c, "")
	case errors.Is(err, shared.ErrNotFound):
		RespondNotFound(c, err.Error())
	case errors.Is(err, shared.ErrConflict), errors.Is(err, shared.ErrInvalidState):
		RespondConflict(c, err.Error())
	case errors.Is(err, shared.ErrInsufficientBalance):
		RespondUnprocessable(c, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, shared.ErrInsufficientInventory):
		RespondUnprocessable(c, "INSUFFICIENT_INVENTORY", err.Error())
	case errors.Is(err, shared.ErrGateway):
		logger.Warn(msg, "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondBadGateway(c, gatewayMessage(err))
	default:
		logger.Error(msg, "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondInternalError(c)
	}
}

func gatewayMessage(err error) string {
	var incomplete video.ErrIncompletePublish
	if errors.As(err, &incomplete) {
		return videoProviderUnavailable
	}
	var gatewayErr *shared.GatewayError
	if errors.As(err, &gatewayErr) && gatewayErr.Provider == "youtube" {
		return videoProviderUnavailable
	}
	return paymentProviderUnavailable
}

// currentUser returns the authenticated caller or writes a 401
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a uuid path parameter or writes a 400
func pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondBadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, logger *slog.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Debug("Invalid request body", "path", c.FullPath(), "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
