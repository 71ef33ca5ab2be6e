package youtube

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

var (
	ErrUploadInitiationFailed = errors.New("youtube upload initiation failed")
	ErrMissingUploadLocation  = errors.New("youtube did not return a resumable upload location")
	ErrUploadTransferFailed   = errors.New("youtube video upload failed")
	ErrInvalidUploadResponse  = errors.New("youtube upload response did not contain a video ID")
	ErrNetworkFailure         = errors.New("youtube API request failed")
)

// APIError describes a failed platform call. Kind is one of the sentinel
// errors above and is what errors.Is matches against.
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Kind }

type errorEnvelope struct {
	Error *googleapi.Error `json:"error"`
}

// newAPIError extracts the platform's error message from body when present
func newAPIError(kind error, status int, body []byte) *APIError {
	apiErr := &APIError{Kind: kind, StatusCode: status, Body: string(body), Message: string(body)}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

func networkError(err error) *APIError {
	return &APIError{Kind: ErrNetworkFailure, Message: err.Error()}
}
