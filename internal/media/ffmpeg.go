package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var videoEncoders = map[string]string{
	"vp9": "libvpx-vp9",
	"vp8": "libvpx",
}

var audioEncoders = map[string]string{
	"opus":   "libopus",
	"vorbis": "libvorbis",
}

// FFmpegEncoder records WebM video by piping raw frames into ffmpeg
type FFmpegEncoder struct {
	workDir string

	once      sync.Once
	available map[string]bool
	listFn    func() (string, error)
}

// Ensure FFmpegEncoder implements Encoder
var _ Encoder = (*FFmpegEncoder)(nil)

// NewFFmpegEncoder creates an encoder writing temporary files to workDir
// (os.TempDir when empty).
func NewFFmpegEncoder(workDir string) *FFmpegEncoder {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &FFmpegEncoder{workDir: workDir, listFn: listFFmpegEncoders}
}

func listFFmpegEncoders() (string, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", err
	}
	out, err := exec.Command(path, "-hide_banner", "-encoders").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg -encoders failed: %w", err)
	}
	return string(out), nil
}

func (e *FFmpegEncoder) hasEncoder(name string) bool {
	e.once.Do(func() {
		e.available = map[string]bool{}
		out, err := e.listFn()
		if err != nil {
			logrus.Warnf("ffmpeg is not available: %v", err)
			return
		}
		for _, line := range strings.Split(out, "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 2 && len(fields[0]) == 6 {
				e.available[fields[1]] = true
			}
		}
	})
	return e.available[name]
}

// IsTypeSupported reports whether ffmpeg can produce mimeType
func (e *FFmpegEncoder) IsTypeSupported(mimeType string) bool {
	videoCodec, audioCodec, ok := e.resolve(mimeType)
	if !ok {
		return false
	}
	return videoCodec != "" && (audioCodec == "" || e.hasEncoder(audioCodec))
}

// resolve maps a MIME type onto ffmpeg encoder names. With no codecs listed
// the best available video encoder is used.
func (e *FFmpegEncoder) resolve(mimeType string) (videoCodec, audioCodec string, ok bool) {
	container, codecs := parseCodecs(mimeType)
	if container != "video/webm" {
		return "", "", false
	}

	if len(codecs) == 0 {
		for _, name := range []string{"vp9", "vp8"} {
			if e.hasEncoder(videoEncoders[name]) {
				return videoEncoders[name], "", true
			}
		}
		return "", "", false
	}

	for _, c := range codecs {
		if enc, isVideo := videoEncoders[c]; isVideo {
			if !e.hasEncoder(enc) {
				return "", "", false
			}
			videoCodec = enc
			continue
		}
		if enc, isAudio := audioEncoders[c]; isAudio {
			audioCodec = enc
			continue
		}
		return "", "", false
	}
	return videoCodec, audioCodec, true
}

// NewRecorder prepares a recording for opts.MIMEType
func (e *FFmpegEncoder) NewRecorder(opts RecorderOptions) (Recorder, error) {
	videoCodec, audioCodec, ok := e.resolve(opts.MIMEType)
	if !ok || videoCodec == "" {
		return nil, fmt.Errorf("unsupported format %s", opts.MIMEType)
	}
	if opts.FPS <= 0 {
		opts.FPS = FramesPerSec
	}

	return &ffmpegRecorder{
		encoder:    e,
		opts:       opts,
		videoCodec: videoCodec,
		audioCodec: audioCodec,
		outPath:    filepath.Join(e.workDir, fmt.Sprintf("render-%s.webm", uuid.NewString())),
	}, nil
}

type ffmpegRecorder struct {
	encoder    *FFmpegEncoder
	opts       RecorderOptions
	videoCodec string
	audioCodec string
	silence    bool
	outPath    string

	mu       sync.Mutex
	pipe     *io.PipeWriter
	done     chan error
	finished chan struct{}
	stderr   bytes.Buffer
	stopped  bool
}

func (r *ffmpegRecorder) AddSilentAudioTrack() error {
	if r.audioCodec == "" {
		if !r.encoder.hasEncoder(audioEncoders["opus"]) {
			return fmt.Errorf("no audio encoder available for %s", r.opts.MIMEType)
		}
		r.audioCodec = audioEncoders["opus"]
	}
	r.silence = true
	return nil
}

func (r *ffmpegRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pipe != nil {
		return fmt.Errorf("recorder already started")
	}

	reader, writer := io.Pipe()
	streams := []*ffmpeg.Stream{
		ffmpeg.Input("pipe:", ffmpeg.KwArgs{
			"f":       "rawvideo",
			"pix_fmt": "rgba",
			"s":       fmt.Sprintf("%dx%d", r.opts.Width, r.opts.Height),
			"r":       fmt.Sprintf("%d", r.opts.FPS),
		}),
	}

	args := ffmpeg.KwArgs{
		"c:v":      r.videoCodec,
		"pix_fmt":  "yuv420p",
		"deadline": "realtime",
		"cpu-used": "8",
		"f":        "webm",
	}
	if r.silence {
		streams = append(streams, ffmpeg.Input("anullsrc=channel_layout=stereo:sample_rate=48000", ffmpeg.KwArgs{"f": "lavfi"}))
		args["c:a"] = r.audioCodec
		args["shortest"] = ""
	}

	cmd := ffmpeg.Output(streams, r.outPath, args).
		OverWriteOutput().
		WithInput(reader).
		WithErrorOutput(&r.stderr)

	r.pipe = writer
	r.done = make(chan error, 1)
	go func() {
		err := cmd.Run()
		reader.CloseWithError(io.EOF)
		r.done <- err
	}()

	r.finished = make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			writer.CloseWithError(ctx.Err())
		case <-r.finished:
		}
	}()

	logrus.Debugf("Recording %s (%s) to %s", r.opts.MIMEType, r.videoCodec, r.outPath)
	return nil
}

func (r *ffmpegRecorder) Hold(frame *image.RGBA, d time.Duration) error {
	r.mu.Lock()
	pipe := r.pipe
	r.mu.Unlock()
	if pipe == nil {
		return fmt.Errorf("recorder not started")
	}

	frames := int(math.Round(d.Seconds() * float64(r.opts.FPS)))
	if frames < 1 {
		frames = 1
	}
	for i := 0; i < frames; i++ {
		if _, err := pipe.Write(frame.Pix); err != nil {
			return fmt.Errorf("ffmpeg stopped accepting frames: %w", err)
		}
	}
	return nil
}

func (r *ffmpegRecorder) Stop() (*Blob, error) {
	r.mu.Lock()
	if r.stopped || r.pipe == nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("recorder not running")
	}
	r.stopped = true
	close(r.finished)
	r.pipe.Close()
	r.mu.Unlock()

	defer os.Remove(r.outPath)

	if err := <-r.done; err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, lastLines(r.stderr.String(), 5))
	}

	data, err := os.ReadFile(r.outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}

	return &Blob{Data: data, MIMEType: BaseMIMEType(r.opts.MIMEType)}, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
