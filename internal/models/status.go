package models

import (
	"fmt"
	"strings"
)

// VideoStatus is the lifecycle stage of a video. The zero value is not a
// valid status; the set below is closed.
type VideoStatus uint8

const (
	StatusProcessing VideoStatus = iota + 1
	StatusGenerated
	StatusUploading
	StatusUploaded
	StatusFailed
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []VideoStatus{StatusProcessing, StatusGenerated, StatusUploading, StatusUploaded, StatusFailed}

func (s VideoStatus) String() string {
	switch s {
	case StatusProcessing:
		return "Processing"
	case StatusGenerated:
		return "Generated"
	case StatusUploading:
		return "Uploading"
	case StatusUploaded:
		return "Uploaded"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("VideoStatus(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the known statuses
func (s VideoStatus) Valid() bool {
	return s >= StatusProcessing && s <= StatusFailed
}

// Terminal reports whether no further transition is expected
func (s VideoStatus) Terminal() bool {
	return s == StatusUploaded || s == StatusFailed
}

// CanTransitionTo reports whether the pipeline may move from s to next.
// Any non-terminal status may fail.
func (s VideoStatus) CanTransitionTo(next VideoStatus) bool {
	if next == StatusFailed {
		return !s.Terminal()
	}
	switch s {
	case StatusProcessing:
		return next == StatusProcessing || next == StatusGenerated
	case StatusGenerated:
		return next == StatusUploading
	case StatusUploading:
		return next == StatusUploaded
	default:
		return false
	}
}

func (s VideoStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid video status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *VideoStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseVideoStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseVideoStatus converts a status name into a VideoStatus
func ParseVideoStatus(name string) (VideoStatus, error) {
	for _, s := range AllStatuses {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown video status %q", name)
}

// Sentiment classifies a comment
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentQuestion Sentiment = "Question"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentSpam     Sentiment = "Spam"
)

// AllSentiments lists the sentiments the reply assistant may return
var AllSentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentQuestion, SentimentNeutral, SentimentSpam}

// ParseSentiment normalizes a sentiment label, ignoring case
func ParseSentiment(label string) (Sentiment, error) {
	label = strings.TrimSpace(label)
	for _, s := range AllSentiments {
		if strings.EqualFold(string(s), label) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown sentiment %q", label)
}
