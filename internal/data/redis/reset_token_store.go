// Package redis provides the short-lived key-value stores backed by Redis:
// password reset tokens and per-video approval locks.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/miniguru-commerce/internal/domain/user"
)

const resetTokenPrefix = "password_reset:"

// ResetTokenStore keeps reset tokens keyed by their SHA-256 digest so a
// leaked keyspace never reveals usable tokens.
type ResetTokenStore struct {
	client redis.Cmdable
	logger *slog.Logger
}

func NewResetTokenStore(logger *slog.Logger, client redis.Cmdable) *ResetTokenStore {
	return &ResetTokenStore{client: client, logger: logger}
}

// Save stores the token for ttl
func (s *ResetTokenStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetTokenKey(token), userID.String(), ttl).Err(); err != nil {
		s.logger.Error("Failed to store reset token", "user_id", userID.String(), "error", err)
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// Consume returns the token's user and deletes it in one GETDEL, so a token
// can be redeemed only once.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := s.client.GetDel(ctx, resetTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, user.ErrInvalidResetToken{}
		}
		s.logger.Error("Failed to consume reset token", "error", err)
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, user.ErrInvalidResetToken{}
	}
	return userID, nil
}

func resetTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return resetTokenPrefix + hex.EncodeToString(sum[:])
}
