package media

import (
	"context"
	"errors"
	"image"
	"strings"
	"time"
)

// ErrUnsupportedEnvironment is returned when no usable recorder or format
// is available.
var ErrUnsupportedEnvironment = errors.New("video recording is not supported in this environment")

// PreferredMIMETypes is the format preference order, combined video and
// audio codecs first.
var PreferredMIMETypes = []string{
	"video/webm;codecs=vp9,opus",
	"video/webm;codecs=vp8,opus",
	"video/webm;codecs=vp9",
	"video/webm;codecs=vp8",
	"video/webm",
}

// Blob is an encoded video
type Blob struct {
	Data     []byte
	MIMEType string
}

// RecorderOptions configures a recording
type RecorderOptions struct {
	MIMEType string
	Width    int
	Height   int
	FPS      int
}

// Encoder creates recorders for the formats it supports
type Encoder interface {
	IsTypeSupported(mimeType string) bool
	NewRecorder(opts RecorderOptions) (Recorder, error)
}

// Recorder turns a sequence of held frames into a video
type Recorder interface {
	// AddSilentAudioTrack must be called before Start
	AddSilentAudioTrack() error
	Start(ctx context.Context) error
	// Hold shows frame for d of output time
	Hold(frame *image.RGBA, d time.Duration) error
	Stop() (*Blob, error)
}

// SelectMIMEType returns the first preferred format enc supports, or ""
func SelectMIMEType(enc Encoder) string {
	for _, mimeType := range PreferredMIMETypes {
		if enc.IsTypeSupported(mimeType) {
			return mimeType
		}
	}
	return ""
}

// BaseMIMEType strips codec parameters: "video/webm;codecs=vp9" -> "video/webm"
func BaseMIMEType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.TrimSpace(base)
}

// parseCodecs returns the container and codec list of a MIME type
func parseCodecs(mimeType string) (string, []string) {
	base, params, _ := strings.Cut(mimeType, ";")
	var codecs []string
	for _, param := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(key, "codecs") {
			continue
		}
		for _, c := range strings.Split(strings.Trim(value, `"`), ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				codecs = append(codecs, c)
			}
		}
	}
	return strings.ToLower(strings.TrimSpace(base)), codecs
}
