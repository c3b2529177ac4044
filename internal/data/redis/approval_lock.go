package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/miniguru-commerce/internal/domain/video"
)

const approvalLockPrefix = "video_approval:"

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock taken over by someone else is left alone.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// ApprovalLock is a SET NX lock that keeps two admins from publishing the
// same video at once. The TTL must outlast the publisher timeout.
type ApprovalLock struct {
	client   redis.Cmdable
	logger   *slog.Logger
	ttl      time.Duration
	newToken func() string
}

func NewApprovalLock(logger *slog.Logger, client redis.Cmdable, ttl time.Duration) *ApprovalLock {
	return &ApprovalLock{
		client:   client,
		logger:   logger,
		ttl:      ttl,
		newToken: func() string { return uuid.NewString() },
	}
}

// Acquire takes the lock and returns the token needed to release it.
// A held lock yields video.ErrApprovalInProgress.
func (l *ApprovalLock) Acquire(ctx context.Context, videoID uuid.UUID) (string, error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, approvalLockKey(videoID), token, l.ttl).Result()
	if err != nil {
		l.logger.Error("Failed to acquire approval lock", "video_id", videoID.String(), "error", err)
		return "", fmt.Errorf("failed to acquire approval lock: %w", err)
	}
	if !ok {
		return "", video.ErrApprovalInProgress{VideoID: videoID}
	}
	return token, nil
}

// Release drops the lock if token still owns it
func (l *ApprovalLock) Release(ctx context.Context, videoID uuid.UUID, token string) error {
	deleted, err := l.client.Eval(ctx, releaseScript, []string{approvalLockKey(videoID)}, token).Int64()
	if err != nil {
		l.logger.Error("Failed to release approval lock", "video_id", videoID.String(), "error", err)
		return fmt.Errorf("failed to release approval lock: %w", err)
	}
	if deleted == 0 {
		l.logger.Warn("Approval lock expired before release", "video_id", videoID.String())
	}
	return nil
}

func approvalLockKey(videoID uuid.UUID) string {
	return approvalLockPrefix + videoID.String()
}
