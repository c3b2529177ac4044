package redis

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miniguru-commerce/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestResetTokenKey_HidesToken(t *testing.T) {
	key := resetTokenKey("plain-token")

	assert.NotContains(t, key, "plain-token")
	assert.Len(t, key, len(resetTokenPrefix)+64)
	assert.Equal(t, key, resetTokenKey("plain-token"))
	assert.NotEqual(t, key, resetTokenKey("other-token"))
}

func TestResetTokenStore_Save(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewResetTokenStore(newTestLogger(), client)
	userID := uuid.New()

	mock.ExpectSet(resetTokenKey("tok"), userID.String(), time.Hour).SetVal("OK")
	require.NoError(t, store.Save(ctx, "tok", userID, time.Hour))

	mock.ExpectSet(resetTokenKey("tok"), userID.String(), time.Hour).SetErr(errors.New("READONLY"))
	err := store.Save(ctx, "tok", userID, time.Hour)
	assert.ErrorContains(t, err, "failed to store reset token")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTokenStore_Consume(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	testCases := []struct {
		name      string
		setup     func(mock redismock.ClientMock)
		wantUser  uuid.UUID
		wantKind  error
		wantInErr string
	}{
		{
			name: "ValidToken",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGetDel(resetTokenKey("tok")).SetVal(userID.String())
			},
			wantUser: userID,
		},
		{
			name: "UnknownOrUsedToken",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGetDel(resetTokenKey("tok")).RedisNil()
			},
			wantKind: shared.ErrValidation,
		},
		{
			name: "CorruptValue",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGetDel(resetTokenKey("tok")).SetVal("not-a-uuid")
			},
			wantKind: shared.ErrValidation,
		},
		{
			name: "RedisDown",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGetDel(resetTokenKey("tok")).SetErr(errors.New("connection refused"))
			},
			wantInErr: "failed to consume reset token",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			store := NewResetTokenStore(newTestLogger(), client)
			tc.setup(mock)

			got, err := store.Consume(ctx, "tok")
			switch {
			case tc.wantKind != nil:
				assert.ErrorIs(t, err, tc.wantKind)
			case tc.wantInErr != "":
				assert.ErrorContains(t, err, tc.wantInErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.wantUser, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
