// Package youtube publishes approved videos through the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/domain/shared"
	"github.com/miniguru-commerce/internal/domain/video"
)

const (
	providerName = "youtube"
	watchURL     = "https://www.youtube.com/watch?v="

	// Science & Technology, used when the submission has no numeric category
	defaultCategoryID = "28"
)

type uploadFunc func(ctx context.Context, meta *yt.Video, media io.Reader) (*yt.Video, error)

// Publisher uploads local files to the channel owning the refresh token
type Publisher struct {
	upload  uploadFunc
	fs      afero.Fs
	timeout time.Duration
	logger  *slog.Logger
}

// NewPublisher builds an OAuth2 client from the stored refresh token. Access
// tokens are refreshed on demand by the token source.
func NewPublisher(ctx context.Context, logger *slog.Logger, cfg *config.YouTubeConfig, fs afero.Fs) (*Publisher, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{yt.YoutubeUploadScope},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	service, err := yt.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Publisher{
		upload: func(ctx context.Context, meta *yt.Video, media io.Reader) (*yt.Video, error) {
			return service.Videos.Insert([]string{"snippet", "status"}, meta).Media(media).Context(ctx).Do()
		},
		fs:      fs,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Publish uploads the video's local file with the requested privacy. The
// result always carries a provider id; an answer without one is an error.
func (p *Publisher) Publish(ctx context.Context, v *video.PendingVideo, privacy video.Privacy) (video.PublishResult, error) {
	file, err := p.fs.Open(v.LocalPath)
	if err != nil {
		return video.PublishResult{}, fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	uploaded, err := p.upload(ctx, buildVideo(v, privacy), file)
	if err != nil {
		p.logger.Error("YouTube upload failed", "video_id", v.ID.String(), "error", err)
		return video.PublishResult{}, &shared.GatewayError{Provider: providerName, Op: "videos.insert", Err: err}
	}
	if uploaded == nil || uploaded.Id == "" {
		return video.PublishResult{}, video.ErrIncompletePublish{VideoID: v.ID}
	}

	p.logger.Info("Video published",
		"video_id", v.ID.String(),
		"youtube_video_id", uploaded.Id,
		"duration", time.Since(start),
	)
	return video.PublishResult{VideoID: uploaded.Id, URL: watchURL + uploaded.Id}, nil
}

func buildVideo(v *video.PendingVideo, privacy video.Privacy) *yt.Video {
	return &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       v.Title,
			Description: v.Description,
			Tags:        v.Tags,
			CategoryId:  categoryID(v.Category),
		},
		Status: &yt.VideoStatus{PrivacyStatus: string(privacy)},
	}
}

func categoryID(category string) string {
	if _, err := strconv.Atoi(category); err == nil {
		return category
	}
	return defaultCategoryID
}
