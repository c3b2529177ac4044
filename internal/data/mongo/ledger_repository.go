// Package mongo provides MongoDB implementations of the read-side repositories:
// the projected wallet history and the video review queue.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/miniguru-commerce/internal/domain/ledger"
)

const (
	// LedgerCollectionName is the name of the ledger collection in MongoDB
	LedgerCollectionName = "ledger_entries"
)

// LedgerRepository implements the ledger.Repository interface for MongoDB
type LedgerRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewLedgerRepository creates a new MongoDB ledger repository
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		collection: db.Collection(LedgerCollectionName),
		logger:     logger,
	}
}

var _ ledger.Repository = (*LedgerRepository)(nil)

// EnsureIndexes creates the unique transaction index that makes projection
// idempotent, and the owner index used by history reads.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, ledgerIndexes())
	if err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}

func ledgerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_transaction_id"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created_at"),
		},
	}
}

// Create stores a new ledger entry. A second entry for the same transaction
// hits the unique index and is reported as ErrDuplicateEntry.
func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.ErrDuplicateEntry{TransactionID: entry.TransactionID}
		}
		r.logger.Error("Failed to create ledger entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a ledger entry by its transaction ID.
func (r *LedgerRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Entry, error) {
	var entry ledger.Entry
	err := r.collection.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get ledger entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &entry, nil
}

// GetByOwnerID retrieves paginated ledger entries for a user, newest first.
func (r *LedgerRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, pageOptions(limit, offset))
	if err != nil {
		r.logger.Error("Failed to get ledger entries",
			"owner_id", ownerID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*ledger.Entry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode ledger entries",
			"owner_id", ownerID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	return entries, nil
}

// CountByOwnerID counts the total number of ledger entries for a user
func (r *LedgerRepository) CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		r.logger.Error("Failed to count ledger entries",
			"owner_id", ownerID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

func pageOptions(limit, offset int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
}
