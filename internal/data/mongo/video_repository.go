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

	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/video"
)

// VideoCollectionName holds submissions in every state
const VideoCollectionName = "pending_videos"

// VideoRepository implements the video.Repository interface for MongoDB
type VideoRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewVideoRepository creates a new MongoDB video repository
func NewVideoRepository(logger *slog.Logger, db *mongo.Database) *VideoRepository {
	return &VideoRepository{
		collection: db.Collection(VideoCollectionName),
		logger:     logger,
	}
}

var _ video.Repository = (*VideoRepository)(nil)

// EnsureIndexes creates the status and uploader indexes used by the list queries
func (r *VideoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("status_submitted_at"),
		},
		{
			Keys:    bson.D{{Key: "uploader_id", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("uploader_submitted_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create video indexes: %w", err)
	}
	return nil
}

// Create stores a new submission
func (r *VideoRepository) Create(ctx context.Context, v *video.PendingVideo) error {
	if _, err := r.collection.InsertOne(ctx, v); err != nil {
		r.logger.Error("Failed to create video", "video_id", v.ID.String(), "error", err)
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// GetByID retrieves a submission by its ID
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*video.PendingVideo, error) {
	var v video.PendingVideo
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, video.ErrVideoNotFound{VideoID: id}
		}
		r.logger.Error("Failed to get video", "video_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &v, nil
}

// ListByStatus returns submissions in the given state, newest first
func (r *VideoRepository) ListByStatus(ctx context.Context, status video.Status) ([]*video.PendingVideo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	return r.find(ctx, bson.M{"status": status}, opts)
}

// ListByUploader returns one user's submissions, newest first
func (r *VideoRepository) ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]*video.PendingVideo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	return r.find(ctx, bson.M{"uploader_id": uploaderID}, opts)
}

func (r *VideoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*video.PendingVideo, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list videos", "error", err)
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer cursor.Close(ctx)

	videos := make([]*video.PendingVideo, 0)
	if err := cursor.All(ctx, &videos); err != nil {
		r.logger.Error("Failed to decode videos", "error", err)
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

// SaveTransition writes an approval or rejection. The filter includes the
// pending status, so of two racing reviewers only the first one matches.
func (r *VideoRepository) SaveTransition(ctx context.Context, v *video.PendingVideo) error {
	result, err := r.collection.UpdateOne(ctx, transitionFilter(v.ID), transitionUpdate(v))
	if err != nil {
		r.logger.Error("Failed to save video transition",
			"video_id", v.ID.String(),
			"status", string(v.Status),
			"error", err)
		return fmt.Errorf("failed to save video transition: %w", err)
	}

	if result.MatchedCount == 0 {
		current, err := r.GetByID(ctx, v.ID)
		if err != nil {
			return err
		}
		return shared.InvalidStateError{Entity: "video", From: string(current.Status), To: string(v.Status)}
	}
	return nil
}

func transitionFilter(id uuid.UUID) bson.M {
	return bson.M{"_id": id, "status": video.StatusPending}
}

func transitionUpdate(v *video.PendingVideo) bson.M {
	set := bson.M{"status": v.Status}
	switch v.Status {
	case video.StatusApproved:
		set["privacy_status"] = v.PrivacyStatus
		set["youtube_video_id"] = v.YouTubeVideoID
		set["youtube_url"] = v.YouTubeURL
		set["approved_at"] = v.ApprovedAt
		set["approved_by"] = v.ApprovedBy
	case video.StatusRejected:
		set["rejection_reason"] = v.RejectionReason
		set["rejected_at"] = v.RejectedAt
		set["rejected_by"] = v.RejectedBy
	}
	return bson.M{"$set": set}
}
