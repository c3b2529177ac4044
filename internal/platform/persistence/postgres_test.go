package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func newTestDB(t *testing.T, retries uint64) (*PostgresDB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresDB{
		beginner: mock,
		logger:   slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})),
		retry:    RetryPolicy{MaxRetries: retries, InitialInterval: time.Millisecond},
	}, mock
}

func TestPostgresDB_ExecuteTx(t *testing.T) {
	ctx := context.Background()

	t.Run("CommitsOnSuccess", func(t *testing.T) {
		db, mock := newTestDB(t, 3)
		mock.ExpectBeginTx(readCommitted)
		mock.ExpectExec("UPDATE wallets").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "UPDATE wallets SET balance = 0")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackAndKeepsErrorChain", func(t *testing.T) {
		db, mock := newTestDB(t, 3)
		mock.ExpectBeginTx(readCommitted)
		mock.ExpectRollback()

		domainErr := errors.New("insufficient balance")
		calls := 0
		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			calls++
			return domainErr
		})
		assert.ErrorIs(t, err, domainErr)
		assert.Equal(t, 1, calls, "non-conflict errors must not be retried")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RetriesSerializationFailure", func(t *testing.T) {
		db, mock := newTestDB(t, 3)
		mock.ExpectBeginTx(readCommitted)
		mock.ExpectRollback()
		mock.ExpectBeginTx(readCommitted)
		mock.ExpectRollback()
		mock.ExpectBeginTx(readCommitted)
		mock.ExpectCommit()

		calls := 0
		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			calls++
			switch calls {
			case 1:
				return &pgconn.PgError{Code: "40001"}
			case 2:
				return &pgconn.PgError{Code: "40P01"}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		db, mock := newTestDB(t, 1)
		for i := 0; i < 2; i++ {
			mock.ExpectBeginTx(readCommitted)
			mock.ExpectRollback()
		}

		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			return &pgconn.PgError{Code: "40001"}
		})
		require.Error(t, err)
		assert.True(t, IsRetryable(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginFailure", func(t *testing.T) {
		db, mock := newTestDB(t, 0)
		mock.ExpectBeginTx(readCommitted).WillReturnError(errors.New("pool closed"))

		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnPanic", func(t *testing.T) {
		db, mock := newTestDB(t, 0)
		mock.ExpectBeginTx(readCommitted)
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = db.ExecuteTx(ctx, func(tx pgx.Tx) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(errors.Join(errors.New("wrapped"), &pgconn.PgError{Code: "40P01"})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("plain")))

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("delete product: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}
