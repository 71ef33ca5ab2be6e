package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
)

const (
	SceneDuration = 3000 * time.Millisecond
	FlushDuration = 100 * time.Millisecond
	FramesPerSec  = 30
)

// Synthesizer renders a title card and script lines into a portrait video
type Synthesizer struct {
	encoder Encoder
	face    font.Face
}

// NewSynthesizer creates a synthesizer. A nil encoder makes every render
// fail with ErrUnsupportedEnvironment.
func NewSynthesizer(encoder Encoder) (*Synthesizer, error) {
	face, err := loadFace()
	if err != nil {
		return nil, err
	}
	return &Synthesizer{encoder: encoder, face: face}, nil
}

// Render produces one scene per caption (title first, then each script line)
// over the image with the same index. A render either completes or fails
// outright; no partial video is returned.
func (s *Synthesizer) Render(ctx context.Context, title string, script []string, images [][]byte) (*Blob, error) {
	captions := append([]string{title}, script...)
	if len(images) != len(captions) {
		return nil, fmt.Errorf("need %d images for %d scenes, got %d", len(captions), len(captions), len(images))
	}

	decoded := make([]image.Image, len(images))
	for i, data := range images {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %d: %w", i+1, err)
		}
		decoded[i] = img
	}

	if s.encoder == nil {
		return nil, ErrUnsupportedEnvironment
	}

	mimeType := SelectMIMEType(s.encoder)
	if mimeType == "" {
		return nil, fmt.Errorf("%w: no supported video format", ErrUnsupportedEnvironment)
	}

	recorder, err := s.encoder.NewRecorder(RecorderOptions{
		MIMEType: mimeType,
		Width:    CanvasWidth,
		Height:   CanvasHeight,
		FPS:      FramesPerSec,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedEnvironment, err)
	}

	if err := recorder.AddSilentAudioTrack(); err != nil {
		logrus.Warnf("Could not add silent audio track, the video will have no audio: %v", err)
	}

	if err := recorder.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start recording: %w", err)
	}

	surface := NewSurface(CanvasWidth, CanvasHeight)
	var frame *image.RGBA
	for i, caption := range captions {
		if err := ctx.Err(); err != nil {
			s.abort(recorder)
			return nil, err
		}

		surface.Draw(func(dc *gg.Context) {
			drawScene(dc, s.face, caption, decoded[i])
		})
		frame = surface.Snapshot()

		if err := recorder.Hold(frame, SceneDuration); err != nil {
			s.abort(recorder)
			return nil, fmt.Errorf("failed to record scene %d: %w", i+1, err)
		}
	}

	// let the encoder flush the last scene
	if err := recorder.Hold(frame, FlushDuration); err != nil {
		s.abort(recorder)
		return nil, fmt.Errorf("failed to flush recording: %w", err)
	}

	blob, err := recorder.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to finish recording: %w", err)
	}

	blob.MIMEType = BaseMIMEType(mimeType)
	logrus.Infof("Rendered %d scenes into %d bytes of %s", len(captions), len(blob.Data), blob.MIMEType)
	return blob, nil
}

func (s *Synthesizer) abort(recorder Recorder) {
	if _, err := recorder.Stop(); err != nil {
		logrus.Debugf("Recorder stop after failure: %v", err)
	}
}
