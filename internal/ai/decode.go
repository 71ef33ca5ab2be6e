package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotConfigured is returned when no Gemini API key is available
	ErrNotConfigured = errors.New("Gemini AI is not configured. Please ensure the GEMINI_API_KEY environment variable is set")

	// ErrMalformedResponse matches every *MalformedResponseError
	ErrMalformedResponse = errors.New("AI returned malformed JSON")

	// ErrInvalidSchemaResult is returned when decoded JSON has the wrong shape
	ErrInvalidSchemaResult = errors.New("AI returned data in an invalid format")
)

// MalformedResponseError carries the text that could not be parsed
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%v. Raw response: %s", ErrMalformedResponse, e.Raw)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

var openingFence = regexp.MustCompile("^```[A-Za-z0-9_+-]*")

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = openingFence.ReplaceAllString(text, "")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Decode parses a generative model's text output as JSON into T
func Decode[T any](text string) (T, error) {
	var out T
	body := StripFences(text)
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, &MalformedResponseError{Raw: body, Err: err}
	}
	return out, nil
}
