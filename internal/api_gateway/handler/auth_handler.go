package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/miniguru-commerce/internal/service"
)

const resetRequestedMessage = "If the email is registered, a reset link has been sent."

// AuthHandler serves the unauthenticated password reset flow
type AuthHandler struct {
	resets service.PasswordResetService
	logger *slog.Logger
}

func NewAuthHandler(logger *slog.Logger, resets service.PasswordResetService) *AuthHandler {
	return &AuthHandler{resets: resets, logger: logger}
}

// RequestReset answers identically for known and unknown emails
func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req PasswordResetRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, h.logger, err, "Failed to request password reset")
		return
	}
	RespondAccepted(c, gin.H{"message": resetRequestedMessage})
}

func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.resets.ConfirmReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondServiceError(c, h.logger, err, "Failed to confirm password reset")
		return
	}
	RespondOK(c, gin.H{"message": "Password updated."})
}
