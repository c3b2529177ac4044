package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/user"
)

const (
	resetTokenBytes   = 32
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

// PasswordResetServiceImpl issues random single-use tokens kept in Redis
type PasswordResetServiceImpl struct {
	users      user.Repository
	tokens     ResetTokenStore
	notifier   ResetNotifier
	ttl        time.Duration
	bcryptCost int
	newToken   func() (string, error)
	logger     *slog.Logger
}

func NewPasswordResetService(
	logger *slog.Logger,
	users user.Repository,
	tokens ResetTokenStore,
	notifier ResetNotifier,
	ttl time.Duration,
) *PasswordResetServiceImpl {
	return &PasswordResetServiceImpl{
		users:      users,
		tokens:     tokens,
		notifier:   notifier,
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		newToken:   randomToken,
		logger:     logger,
	}
}

var _ PasswordResetService = (*PasswordResetServiceImpl)(nil)

// RequestReset answers the same way whether or not the email is registered
func (s *PasswordResetServiceImpl) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewValidationError("email", "is required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.newToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.tokens.Save(ctx, token, u.ID, s.ttl); err != nil {
		return err
	}
	if err := s.notifier.SendResetToken(ctx, u, token); err != nil {
		return fmt.Errorf("failed to deliver reset token: %w", err)
	}

	s.logger.Info("Password reset token issued", "user_id", u.ID.String(), "ttl", s.ttl)
	return nil
}

// ConfirmReset consumes the token and replaces the password hash. A token works once.
func (s *PasswordResetServiceImpl) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return user.ErrInvalidResetToken{}
	}
	if len(newPassword) < minPasswordLength || len(newPassword) > maxPasswordLength {
		return shared.NewValidationError("password", fmt.Sprintf("must be between %d and %d characters", minPasswordLength, maxPasswordLength))
	}

	userID, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("Password reset completed", "user_id", userID.String())
	return nil
}

func randomToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// LogNotifier stands in for an email sender; it logs that a token was issued
// and prints the token itself only at debug level
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendResetToken(ctx context.Context, u *user.User, token string) error {
	n.logger.Info("Password reset email queued", "user_id", u.ID.String())
	n.logger.DebugContext(ctx, "Password reset token", "user_id", u.ID.String(), "token", token)
	return nil
}
