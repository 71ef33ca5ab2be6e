package youtube

import (
	"context"

	"github.com/shortsforge/automation-engine/internal/models"
)

// API defines the YouTube operations the engine depends on
type API interface {
	UploadVideo(ctx context.Context, token string, metadata VideoMetadata, video Media) (string, error)
	FetchProfile(ctx context.Context, token string) (*Profile, error)
	ChannelDetails(ctx context.Context, token string) (*ChannelDetails, error)
	PlaylistVideoIDs(ctx context.Context, token, playlistID, pageToken string, maxResults int) ([]string, string, error)
	VideoStatistics(ctx context.Context, token string, ids []string) (map[string]models.VideoStats, error)
	ListComments(ctx context.Context, token, videoID string) ([]models.Comment, error)
	PostReply(ctx context.Context, token, parentID, text string) error
}

// VideoMetadata is what the upload declares about a video
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
}

// Media is an encoded video ready to upload
type Media struct {
	Data     []byte
	MIMEType string
}

// Profile identifies the connected channel
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ChannelDetails is the subset of channel data used for stats reconciliation
type ChannelDetails struct {
	UploadsPlaylistID string
	VideoCount        int64
	CommentCount      int64
}
