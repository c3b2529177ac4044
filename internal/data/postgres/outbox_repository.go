package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/outbox"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/platform/persistence"
)

const outboxColumns = `id, transaction_id, wallet_id, event_type, payload, status, attempts, created_at, last_attempt_at`

type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
	now     func() time.Time
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithTx binds the repository to tx so a message commits with its wallet change
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{querier: tx, logger: r.logger, now: r.now}
}

func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	err := r.querier.QueryRow(ctx, `
		INSERT INTO wallet_outbox (transaction_id, wallet_id, event_type, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		message.TransactionID,
		message.WalletID,
		message.EventType,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		r.logger.Error("Failed to insert outbox message", "transaction_id", message.TransactionID.String(), "error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// ClaimPending stamps up to limit PENDING messages whose previous claim is
// older than lease and returns them oldest first. SKIP LOCKED keeps concurrent
// pollers from claiming the same rows; an unfinished claim expires with the lease.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*outbox.Message, error) {
	now := r.now()
	rows, err := r.querier.Query(ctx, `
		UPDATE wallet_outbox
		SET last_attempt_at = $1
		WHERE id IN (
			SELECT id FROM wallet_outbox
			WHERE status = $2 AND (last_attempt_at IS NULL OR last_attempt_at < $3)
			ORDER BY id
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+outboxColumns,
		now, shared.OutboxStatusPending, now.Add(-lease), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		var m outbox.Message
		if err := rows.Scan(
			&m.ID, &m.TransactionID, &m.WalletID, &m.EventType, &m.Payload,
			&m.Status, &m.Attempts, &m.CreatedAt, &m.LastAttemptAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed outbox messages: %w", err)
	}

	// RETURNING has no defined order
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	result, err := r.querier.Exec(ctx,
		`UPDATE wallet_outbox SET status = $1, last_attempt_at = $2 WHERE id = $3`,
		status, r.now(), id,
	)
	if err != nil {
		r.logger.Error("Failed to update outbox status", "id", id, "status", string(status), "error", err)
		return fmt.Errorf("failed to update outbox message status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

// RecordFailure increments attempts and parks the message in one statement,
// so a crash between the two can never leave an exhausted message PENDING.
func (r *OutboxRepository) RecordFailure(ctx context.Context, id int64, maxAttempts int) (shared.OutboxStatus, error) {
	var status shared.OutboxStatus
	err := r.querier.QueryRow(ctx, `
		UPDATE wallet_outbox
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $1 THEN $2 ELSE status END,
		    last_attempt_at = $3
		WHERE id = $4
		RETURNING status`,
		maxAttempts, shared.OutboxStatusFailedToPublish, r.now(), id,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", outbox.ErrMessageNotFound{ID: id}
	}
	if err != nil {
		return "", fmt.Errorf("failed to record outbox failure: %w", err)
	}
	return status, nil
}
