package handler

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/miniguru-commerce/internal/domain/video"
	"github.com/miniguru-commerce/internal/service"
)

// VideoHandler exposes submission for users and review for admins
type VideoHandler struct {
	videos    service.VideoService
	uploadDir string
	logger    *slog.Logger
}

// NewVideoHandler resolves submitted file names inside uploadDir
func NewVideoHandler(logger *slog.Logger, videos service.VideoService, uploadDir string) *VideoHandler {
	return &VideoHandler{videos: videos, uploadDir: uploadDir, logger: logger}
}

func (h *VideoHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req SubmitVideoRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	// Only a bare file name is accepted so the path cannot leave the upload directory
	name := strings.TrimSpace(req.FileName)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		RespondBadRequest(c, "file_name must be a file name inside the upload directory")
		return
	}

	v, err := h.videos.Submit(c.Request.Context(), userID,
		video.Metadata{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Tags:        video.SplitTags(req.Tags),
		},
		video.File{
			LocalPath:    filepath.Join(h.uploadDir, name),
			OriginalName: req.OriginalName,
			MimeType:     req.MimeType,
		},
	)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to submit video")
		return
	}
	RespondCreated(c, toVideoResponse(v))
}

func (h *VideoHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	videos, err := h.videos.ListMySubmissions(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list submissions")
		return
	}
	RespondOK(c, toVideoResponses(videos))
}

func (h *VideoHandler) ListPending(c *gin.Context) {
	videos, err := h.videos.ListPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list pending videos")
		return
	}
	RespondOK(c, toVideoResponses(videos))
}

func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "video")
	if !ok {
		return
	}

	v, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to get video")
		return
	}
	RespondOK(c, toVideoResponse(v))
}

// Approve publishes the video; the body is optional and defaults to public
func (h *VideoHandler) Approve(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "video")
	if !ok {
		return
	}
	var req ApproveVideoRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, h.logger, &req) {
		return
	}

	v, err := h.videos.Approve(c.Request.Context(), adminID, id, req.PrivacyStatus)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to approve video")
		return
	}
	RespondOK(c, toVideoResponse(v))
}

func (h *VideoHandler) Reject(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "video")
	if !ok {
		return
	}
	var req RejectVideoRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	v, err := h.videos.Reject(c.Request.Context(), adminID, id, req.Reason)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to reject video")
		return
	}
	RespondOK(c, toVideoResponse(v))
}
