package outbox

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Repository stores outbox messages next to the wallet rows they describe.
// Several pollers may run at once; ClaimPending hands each message to one of
// them for the length of the lease.
type Repository interface {
	Create(ctx context.Context, message *Message) error
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*Message, error)
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error

	// RecordFailure counts a failed projection and parks the message as
	// FAILED_TO_PUBLISH once maxAttempts is reached. It returns the new status.
	RecordFailure(ctx context.Context, id int64, maxAttempts int) (shared.OutboxStatus, error)

	WithTx(tx pgx.Tx) Repository
}

type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

func (e ErrMessageNotFound) Is(target error) bool { return target == shared.ErrNotFound }
