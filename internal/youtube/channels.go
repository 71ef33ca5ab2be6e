package youtube

import (
	"context"
	"strconv"
	"strings"

	"github.com/shortsforge/automation-engine/internal/models"
	ytapi "google.golang.org/api/youtube/v3"
)

// UnknownChannel is used when the profile has no title
const UnknownChannel = "Unknown Channel"

// MaxResultsPerPage is the platform's page and batch size limit
const MaxResultsPerPage = 50

// FetchProfile returns the connected channel's name and avatar
func (c *Client) FetchProfile(ctx context.Context, token string) (*Profile, error) {
	var resp ytapi.ChannelListResponse
	if err := c.getJSON(ctx, token, "/channels", map[string]string{
		"part": "snippet",
		"mine": "true",
	}, &resp); err != nil {
		return nil, err
	}

	profile := &Profile{Name: UnknownChannel}
	if len(resp.Items) > 0 && resp.Items[0].Snippet != nil {
		snippet := resp.Items[0].Snippet
		if snippet.Title != "" {
			profile.Name = snippet.Title
		}
		if snippet.Thumbnails != nil && snippet.Thumbnails.Default != nil {
			profile.Avatar = snippet.Thumbnails.Default.Url
		}
	}

	return profile, nil
}

// ChannelDetails returns the uploads playlist and channel counters, or nil
// when the account has no channel.
func (c *Client) ChannelDetails(ctx context.Context, token string) (*ChannelDetails, error) {
	var resp ytapi.ChannelListResponse
	if err := c.getJSON(ctx, token, "/channels", map[string]string{
		"part": "contentDetails,statistics",
		"mine": "true",
	}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, nil
	}

	channel := resp.Items[0]
	details := &ChannelDetails{}
	if channel.Statistics != nil {
		details.VideoCount = int64(channel.Statistics.VideoCount)
		details.CommentCount = int64(channel.Statistics.CommentCount)
	}
	if channel.ContentDetails != nil && channel.ContentDetails.RelatedPlaylists != nil {
		details.UploadsPlaylistID = channel.ContentDetails.RelatedPlaylists.Uploads
	}

	return details, nil
}

// PlaylistVideoIDs returns one page of video IDs from a playlist and the
// token for the next page ("" when done).
func (c *Client) PlaylistVideoIDs(ctx context.Context, token, playlistID, pageToken string, maxResults int) ([]string, string, error) {
	params := map[string]string{
		"part":       "contentDetails",
		"playlistId": playlistID,
		"maxResults": strconv.Itoa(clampPageSize(maxResults)),
	}
	if pageToken != "" {
		params["pageToken"] = pageToken
	}

	var resp ytapi.PlaylistItemListResponse
	if err := c.getJSON(ctx, token, "/playlistItems", params, &resp); err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}

	return ids, resp.NextPageToken, nil
}

// VideoStatistics returns engagement counters keyed by video ID. At most
// MaxResultsPerPage ids may be requested at once.
func (c *Client) VideoStatistics(ctx context.Context, token string, ids []string) (map[string]models.VideoStats, error) {
	stats := make(map[string]models.VideoStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	var resp ytapi.VideoListResponse
	if err := c.getJSON(ctx, token, "/videos", map[string]string{
		"part": "statistics",
		"id":   strings.Join(ids, ","),
	}, &resp); err != nil {
		return nil, err
	}

	for _, item := range resp.Items {
		if item.Statistics == nil {
			continue
		}
		stats[item.Id] = models.VideoStats{
			Views:    int64(item.Statistics.ViewCount),
			Likes:    int64(item.Statistics.LikeCount),
			Comments: int64(item.Statistics.CommentCount),
		}
	}

	return stats, nil
}

func clampPageSize(n int) int {
	if n <= 0 || n > MaxResultsPerPage {
		return MaxResultsPerPage
	}
	return n
}
