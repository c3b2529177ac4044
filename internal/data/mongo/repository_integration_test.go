//go:build integration

package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/miniguru-commerce/internal/domain/ledger"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/video"
	"github.com/miniguru-commerce/internal/domain/wallet"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("miniguru_test")
}

func TestVideoRepository_Integration(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := NewVideoRepository(logger, setupMongo(t))
	require.NoError(t, repo.EnsureIndexes(ctx))

	uploader := uuid.New()
	v := video.New(uploader, video.Metadata{Title: "Solar tracker"}, video.File{LocalPath: "/tmp/solar.mp4"})
	require.NoError(t, repo.Create(ctx, v))

	pending, err := repo.ListByStatus(ctx, video.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, v.ID, pending[0].ID)

	admin := uuid.New()
	require.NoError(t, v.Approve(admin, video.PrivacyPublic, video.PublishResult{VideoID: "abc123", URL: "https://www.youtube.com/watch?v=abc123"}))
	require.NoError(t, repo.SaveTransition(ctx, v))

	// A second reviewer working from a stale copy loses
	stale := *pending[0]
	require.NoError(t, stale.Reject(admin, "too late"))
	err = repo.SaveTransition(ctx, &stale)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	stored, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StatusApproved, stored.Status)
	assert.Equal(t, "abc123", stored.YouTubeVideoID)
	assert.Empty(t, stored.RejectionReason)

	mine, err := repo.ListByUploader(ctx, uploader)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestLedgerRepository_Integration(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := NewLedgerRepository(logger, setupMongo(t))
	require.NoError(t, repo.EnsureIndexes(ctx))

	owner := uuid.New()
	txn, err := wallet.NewTransaction(uuid.New(), wallet.KindCredit, decimal.NewFromInt(500), "wallet top-up")
	require.NoError(t, err)
	require.NoError(t, txn.Complete())
	entry := ledger.NewEntry(txn, owner, "500.00", "corr-1")

	require.NoError(t, repo.Create(ctx, entry))
	assert.ErrorIs(t, repo.Create(ctx, entry), ledger.ErrDuplicateEntry{})

	got, err := repo.GetByTransactionID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", got.Amount)

	entries, err := repo.GetByOwnerID(ctx, owner, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	count, err := repo.CountByOwnerID(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
