package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAPIBaseURL    = "https://www.googleapis.com/youtube/v3"
	DefaultUploadBaseURL = "https://www.googleapis.com/upload/youtube/v3"
)

// Client calls the YouTube Data API on behalf of the channel owner. Every
// call takes the caller's OAuth access token.
type Client struct {
	apiBaseURL    string
	uploadBaseURL string
	client        *resty.Client
}

// Ensure Client implements API
var _ API = (*Client)(nil)

// NewClient creates a new YouTube client. Empty base URLs use the defaults.
func NewClient(apiBaseURL, uploadBaseURL string) *Client {
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	if uploadBaseURL == "" {
		uploadBaseURL = DefaultUploadBaseURL
	}

	return &Client{
		apiBaseURL:    strings.TrimSuffix(apiBaseURL, "/"),
		uploadBaseURL: strings.TrimSuffix(uploadBaseURL, "/"),
		client: resty.New().
			SetTimeout(10 * time.Minute).
			SetHeader("User-Agent", "Shorts-Automation-Engine/1.0"),
	}
}

// getJSON issues an authenticated GET and decodes the body into out
func (c *Client) getJSON(ctx context.Context, token, path string, params map[string]string, out interface{}) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(params).
		Get(c.apiBaseURL + path)

	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return newAPIError(ErrNetworkFailure, resp.StatusCode(), resp.Body())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to parse YouTube response from %s: %w", path, err)
	}

	logrus.Debugf("YouTube GET %s succeeded", path)
	return nil
}
