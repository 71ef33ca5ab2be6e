package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
	ytapi "google.golang.org/api/youtube/v3"
)

// ListComments returns the most relevant top-level comments on a video
func (c *Client) ListComments(ctx context.Context, token, videoID string) ([]models.Comment, error) {
	var resp ytapi.CommentThreadListResponse
	if err := c.getJSON(ctx, token, "/commentThreads", map[string]string{
		"part":       "snippet",
		"videoId":    videoID,
		"maxResults": strconv.Itoa(MaxResultsPerPage),
		"order":      "relevance",
	}, &resp); err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(resp.Items))
	for _, thread := range resp.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		top := thread.Snippet.TopLevelComment
		comments = append(comments, models.Comment{
			ID:   top.Id,
			Text: top.Snippet.TextDisplay,
			Author: models.CommentAuthor{
				DisplayName:     top.Snippet.AuthorDisplayName,
				ProfileImageURL: top.Snippet.AuthorProfileImageUrl,
				ChannelURL:      top.Snippet.AuthorChannelUrl,
			},
			PublishedAt: top.Snippet.PublishedAt,
			LikeCount:   top.Snippet.LikeCount,
		})
	}

	logrus.Debugf("Fetched %d comments for video %s", len(comments), videoID)
	return comments, nil
}

// PostReply publishes a reply under a top-level comment
func (c *Client) PostReply(ctx context.Context, token, parentID, text string) error {
	body, err := json.Marshal(&ytapi.Comment{
		Snippet: &ytapi.CommentSnippet{
			ParentId:     parentID,
			TextOriginal: text,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("part", "snippet").
		SetBody(body).
		Post(c.apiBaseURL + "/comments")

	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return newAPIError(ErrNetworkFailure, resp.StatusCode(), resp.Body())
	}

	logrus.Infof("Posted reply to comment %s", parentID)
	return nil
}
