package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	ytapi "google.golang.org/api/youtube/v3"
)

const (
	// ScienceAndTechnologyCategory is the category every short is filed under
	ScienceAndTechnologyCategory = "28"
	privacyPublic                = "public"
)

// UploadVideo performs a two-phase resumable upload and returns the
// platform-assigned video ID.
func (c *Client) UploadVideo(ctx context.Context, token string, metadata VideoMetadata, video Media) (string, error) {
	location, err := c.initiateUpload(ctx, token, metadata, video)
	if err != nil {
		return "", err
	}

	logrus.Infof("Uploading %d bytes (%s) for %q", len(video.Data), video.MIMEType, metadata.Title)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", video.MIMEType).
		SetBody(video.Data).
		Put(location)

	if err != nil {
		return "", networkError(err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", newAPIError(ErrUploadTransferFailed, resp.StatusCode(), resp.Body())
	}

	var uploaded ytapi.Video
	if err := json.Unmarshal(resp.Body(), &uploaded); err != nil || uploaded.Id == "" {
		return "", newAPIError(ErrInvalidUploadResponse, resp.StatusCode(), resp.Body())
	}

	logrus.Infof("Uploaded video %s", uploaded.Id)
	return uploaded.Id, nil
}

func (c *Client) initiateUpload(ctx context.Context, token string, metadata VideoMetadata, video Media) (string, error) {
	body, err := json.Marshal(uploadResource(metadata))
	if err != nil {
		return "", fmt.Errorf("failed to encode upload metadata: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json; charset=UTF-8").
		SetHeader("X-Upload-Content-Type", video.MIMEType).
		SetHeader("X-Upload-Content-Length", strconv.Itoa(len(video.Data))).
		SetQueryParams(map[string]string{
			"uploadType": "resumable",
			"part":       "snippet,status",
		}).
		SetBody(body).
		Post(c.uploadBaseURL + "/videos")

	if err != nil {
		return "", networkError(err)
	}

	if !resp.IsSuccess() {
		return "", newAPIError(ErrUploadInitiationFailed, resp.StatusCode(), resp.Body())
	}

	location := resp.Header().Get("Location")
	if location == "" {
		return "", &APIError{Kind: ErrMissingUploadLocation, StatusCode: resp.StatusCode(), Message: "no Location header in response"}
	}

	return location, nil
}

// uploadResource builds the video resource declared at initiation: public,
// science and technology, explicitly not made for kids.
func uploadResource(metadata VideoMetadata) *ytapi.Video {
	return &ytapi.Video{
		Snippet: &ytapi.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  ScienceAndTechnologyCategory,
		},
		Status: &ytapi.VideoStatus{
			PrivacyStatus:           privacyPublic,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
}

// ThumbnailURL is the platform thumbnail for an uploaded video
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/mqdefault.jpg", videoID)
}
