package video

import (
	"context"

	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Repository persists submissions
type Repository interface {
	Create(ctx context.Context, v *PendingVideo) error
	GetByID(ctx context.Context, id uuid.UUID) (*PendingVideo, error)
	ListByStatus(ctx context.Context, status Status) ([]*PendingVideo, error)
	ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]*PendingVideo, error)

	// SaveTransition writes a terminal state only if the stored record is still
	// pending; otherwise it returns an InvalidStateError
	SaveTransition(ctx context.Context, v *PendingVideo) error
}

// ErrVideoNotFound indicates an unknown submission
type ErrVideoNotFound struct {
	VideoID uuid.UUID
}

func (e ErrVideoNotFound) Error() string {
	return "video not found: " + e.VideoID.String()
}

func (e ErrVideoNotFound) Is(target error) bool { return target == shared.ErrNotFound }

// ErrIncompletePublish indicates the provider answered without a video id
type ErrIncompletePublish struct {
	VideoID uuid.UUID
}

func (e ErrIncompletePublish) Error() string {
	return "publish of video " + e.VideoID.String() + " returned no provider id"
}

func (e ErrIncompletePublish) Is(target error) bool { return target == shared.ErrGateway }

// ErrApprovalInProgress indicates another admin is already publishing the video
type ErrApprovalInProgress struct {
	VideoID uuid.UUID
}

func (e ErrApprovalInProgress) Error() string {
	return "approval already in progress for video " + e.VideoID.String()
}

func (e ErrApprovalInProgress) Is(target error) bool { return target == shared.ErrConflict }
