package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/video"
)

// VideoServiceImpl moves submissions through pending -> approved | rejected
type VideoServiceImpl struct {
	repo      video.Repository
	publisher VideoPublisher
	lock      ApprovalLock
	fs        afero.Fs
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewVideoService(
	logger *slog.Logger,
	repo video.Repository,
	publisher VideoPublisher,
	lock ApprovalLock,
	fs afero.Fs,
) *VideoServiceImpl {
	return &VideoServiceImpl{
		repo:      repo,
		publisher: publisher,
		lock:      lock,
		fs:        fs,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

var _ VideoService = (*VideoServiceImpl)(nil)

// Submit registers an already stored upload as a pending submission
func (s *VideoServiceImpl) Submit(ctx context.Context, uploaderID uuid.UUID, meta video.Metadata, file video.File) (*video.PendingVideo, error) {
	v := video.New(uploaderID, meta, file)
	if err := s.validateStruct(v.Metadata); err != nil {
		return nil, err
	}
	if err := s.validateStruct(v.File); err != nil {
		return nil, err
	}

	info, err := s.fs.Stat(v.LocalPath)
	if err != nil {
		return nil, shared.NewValidationError("file", "uploaded file not found")
	}
	if info.IsDir() {
		return nil, shared.NewValidationError("file", "must be a regular file")
	}
	if v.Size == 0 {
		v.Size = info.Size()
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("Video submitted for review", "video_id", v.ID.String(), "uploader_id", uploaderID.String())
	return v, nil
}

// lockForTransition takes the per-video review lock once the record can move
// to target, then re-reads it: another admin may have finished in between.
// The returned release must be called when the review ends.
func (s *VideoServiceImpl) lockForTransition(ctx context.Context, videoID uuid.UUID, target video.Status) (*video.PendingVideo, func(), error) {
	v, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	if err := v.CanTransition(target); err != nil {
		return nil, nil, err
	}

	token, err := s.lock.Acquire(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), videoID, token); err != nil {
			s.logger.Warn("Failed to release approval lock", "video_id", videoID.String(), "error", err)
		}
	}

	v, err = s.repo.GetByID(ctx, videoID)
	if err == nil {
		err = v.CanTransition(target)
	}
	if err != nil {
		release()
		return nil, nil, err
	}
	return v, release, nil
}

// Approve publishes the video and records the provider id. The review lock
// keeps a second approval or a rejection from running during the upload, and
// the stored state only changes if the record is still pending.
func (s *VideoServiceImpl) Approve(ctx context.Context, adminID, videoID uuid.UUID, privacyRaw string) (*video.PendingVideo, error) {
	privacy, err := video.ParsePrivacy(privacyRaw)
	if err != nil {
		return nil, err
	}

	v, release, err := s.lockForTransition(ctx, videoID, video.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := s.logger.With("video_id", videoID.String(), "admin_id", adminID.String())

	result, err := s.publisher.Publish(ctx, v, privacy)
	if err != nil {
		logger.Error("Video publish failed", "error", err)
		return nil, err
	}
	if err := v.Approve(adminID, privacy, result); err != nil {
		logger.Error("Publish result rejected", "error", err)
		return nil, err
	}
	if err := s.repo.SaveTransition(ctx, v); err != nil {
		logger.Error("Failed to store approval after publish", "youtube_video_id", result.VideoID, "error", err)
		return nil, err
	}

	s.removeFile(v)
	logger.Info("Video approved", "youtube_video_id", v.YouTubeVideoID, "privacy", string(privacy))
	return v, nil
}

// Reject records the reason and deletes the uploaded file. It waits on nothing:
// while an approval holds the review lock it fails with ErrApprovalInProgress.
func (s *VideoServiceImpl) Reject(ctx context.Context, adminID, videoID uuid.UUID, reason string) (*video.PendingVideo, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewValidationError("reason", "is required")
	}

	v, release, err := s.lockForTransition(ctx, videoID, video.StatusRejected)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := v.Reject(adminID, reason); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTransition(ctx, v); err != nil {
		return nil, err
	}

	s.removeFile(v)
	s.logger.Info("Video rejected", "video_id", videoID.String(), "admin_id", adminID.String())
	return v, nil
}

func (s *VideoServiceImpl) Get(ctx context.Context, videoID uuid.UUID) (*video.PendingVideo, error) {
	return s.repo.GetByID(ctx, videoID)
}

func (s *VideoServiceImpl) ListPending(ctx context.Context) ([]*video.PendingVideo, error) {
	return s.repo.ListByStatus(ctx, video.StatusPending)
}

func (s *VideoServiceImpl) ListMySubmissions(ctx context.Context, uploaderID uuid.UUID) ([]*video.PendingVideo, error) {
	return s.repo.ListByUploader(ctx, uploaderID)
}

// removeFile deletes the local upload; a file that is already gone is fine
func (s *VideoServiceImpl) removeFile(v *video.PendingVideo) {
	if err := s.fs.Remove(v.LocalPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Failed to remove video file", "video_id", v.ID.String(), "path", v.LocalPath, "error", err)
	}
}

func (s *VideoServiceImpl) validateStruct(value interface{}) error {
	err := s.validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.NewValidationError(fe.Field(), fmt.Sprintf("failed %q validation", fe.Tag()))
	}
	return shared.NewValidationError("", err.Error())
}
