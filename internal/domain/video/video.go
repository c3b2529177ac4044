// Package video models user-submitted videos awaiting admin review before they
// are published to the video provider.
package video

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Status of a submission. pending is the only non-terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Privacy is the visibility requested on the video provider
type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
)

// ParsePrivacy defaults an empty value to public
func ParsePrivacy(s string) (Privacy, error) {
	switch Privacy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PrivacyPublic:
		return PrivacyPublic, nil
	case PrivacyUnlisted:
		return PrivacyUnlisted, nil
	case PrivacyPrivate:
		return PrivacyPrivate, nil
	default:
		return "", shared.NewValidationError("privacy_status", "must be one of public, unlisted, private")
	}
}

// Metadata is what the uploader describes about the video
type Metadata struct {
	Title       string   `json:"title" bson:"title" validate:"required,max=100"`
	Description string   `json:"description" bson:"description" validate:"max=5000"`
	Category    string   `json:"category" bson:"category" validate:"max=64"`
	Tags        []string `json:"tags" bson:"tags" validate:"max=30,dive,max=64"`
}

// File describes the stored upload on local disk
type File struct {
	LocalPath    string `json:"-" bson:"local_path" validate:"required"`
	OriginalName string `json:"original_name" bson:"original_name"`
	Size         int64  `json:"file_size" bson:"file_size" validate:"gte=0"`
	MimeType     string `json:"mime_type" bson:"mime_type"`
}

// PublishResult is what the provider returns for a successful upload
type PublishResult struct {
	VideoID string
	URL     string
}

// PendingVideo moves exactly once out of pending
type PendingVideo struct {
	ID              uuid.UUID `json:"id" bson:"_id"`
	Metadata        `bson:"inline"`
	File            `bson:"inline"`
	UploaderID      uuid.UUID  `json:"uploader_id" bson:"uploader_id"`
	Status          Status     `json:"status" bson:"status"`
	PrivacyStatus   Privacy    `json:"privacy_status,omitempty" bson:"privacy_status,omitempty"`
	YouTubeVideoID  string     `json:"youtube_video_id,omitempty" bson:"youtube_video_id,omitempty"`
	YouTubeURL      string     `json:"youtube_url,omitempty" bson:"youtube_url,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at" bson:"submitted_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty" bson:"rejected_at,omitempty"`
	RejectedBy      *uuid.UUID `json:"rejected_by,omitempty" bson:"rejected_by,omitempty"`
}

// New creates a pending submission
func New(uploaderID uuid.UUID, meta Metadata, file File) *PendingVideo {
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Tags = CleanTags(meta.Tags)
	return &PendingVideo{
		ID:          uuid.New(),
		Metadata:    meta,
		File:        file,
		UploaderID:  uploaderID,
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
}

// SplitTags parses a comma separated tag list
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return CleanTags(strings.Split(raw, ","))
}

// CleanTags trims tags and drops empty ones
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// CanTransition reports whether the video may still be approved or rejected
func (v *PendingVideo) CanTransition(to Status) error {
	if v.Status != StatusPending || (to != StatusApproved && to != StatusRejected) {
		return shared.InvalidStateError{Entity: "video", From: string(v.Status), To: string(to)}
	}
	return nil
}

// Approve records a successful publish. The result must carry a provider id.
func (v *PendingVideo) Approve(adminID uuid.UUID, privacy Privacy, result PublishResult) error {
	if err := v.CanTransition(StatusApproved); err != nil {
		return err
	}
	if strings.TrimSpace(result.VideoID) == "" {
		return ErrIncompletePublish{VideoID: v.ID}
	}
	now := time.Now().UTC()
	v.Status = StatusApproved
	v.PrivacyStatus = privacy
	v.YouTubeVideoID = result.VideoID
	v.YouTubeURL = result.URL
	v.ApprovedAt = &now
	v.ApprovedBy = &adminID
	return nil
}

// Reject records an admin rejection; reason must not be empty
func (v *PendingVideo) Reject(adminID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("reason", "is required")
	}
	if err := v.CanTransition(StatusRejected); err != nil {
		return err
	}
	now := time.Now().UTC()
	v.Status = StatusRejected
	v.RejectionReason = reason
	v.RejectedAt = &now
	v.RejectedBy = &adminID
	return nil
}
