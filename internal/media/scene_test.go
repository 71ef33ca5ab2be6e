package media

import (
	"image"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverCrop(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		dstW, dstH int
		want       image.Rectangle
	}{
		{name: "wide source crops sides", srcW: 1920, srcH: 1080, dstW: 1080, dstH: 1920, want: image.Rect(656, 0, 1264, 1080)},
		{name: "tall source crops top and bottom", srcW: 1000, srcH: 4000, dstW: 1080, dstH: 1920, want: image.Rect(0, 1111, 1000, 2889)},
		{name: "same ratio keeps everything", srcW: 540, srcH: 960, dstW: 1080, dstH: 1920, want: image.Rect(0, 0, 540, 960)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoverCrop(tt.srcW, tt.srcH, tt.dstW, tt.dstH))
		})
	}
}

func TestWrapText(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s)) }

	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{name: "fits on one line", text: "hello world", width: 20, want: []string{"hello world"}},
		{name: "wraps greedily", text: "the quick brown fox jumps", width: 10, want: []string{"the quick", "brown fox", "jumps"}},
		{name: "long word stays whole", text: "a supercalifragilistic b", width: 5, want: []string{"a", "supercalifragilistic", "b"}},
		{name: "empty", text: "  ", width: 10, want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapText(tt.text, measure, tt.width))
		})
	}
}

func TestParseCodecs(t *testing.T) {
	container, codecs := parseCodecs("video/webm;codecs=vp9,opus")
	assert.Equal(t, "video/webm", container)
	assert.Equal(t, []string{"vp9", "opus"}, codecs)

	container, codecs = parseCodecs("video/webm")
	assert.Equal(t, "video/webm", container)
	assert.Empty(t, codecs)
}

const encodersOutput = `Encoders:
 V..... = Video
 ------
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D libvorbis            libvorbis (codec vorbis)
`

func TestFFmpegEncoder_IsTypeSupported(t *testing.T) {
	enc := NewFFmpegEncoder(t.TempDir())
	enc.listFn = func() (string, error) { return encodersOutput, nil }

	assert.False(t, enc.IsTypeSupported("video/webm;codecs=vp9,opus"))
	assert.True(t, enc.IsTypeSupported("video/webm;codecs=vp9"))
	assert.True(t, enc.IsTypeSupported("video/webm;codecs=vp8"))
	assert.True(t, enc.IsTypeSupported("video/webm"))
	assert.False(t, enc.IsTypeSupported("video/mp4"))
	assert.Equal(t, "video/webm;codecs=vp9", SelectMIMEType(enc))
}

func TestFFmpegEncoder_SilentAudioNeedsEncoder(t *testing.T) {
	enc := NewFFmpegEncoder(t.TempDir())
	enc.listFn = func() (string, error) { return encodersOutput, nil }

	rec, err := enc.NewRecorder(RecorderOptions{MIMEType: "video/webm;codecs=vp9", Width: 4, Height: 4})
	assert.NoError(t, err)
	assert.Error(t, rec.AddSilentAudioTrack())
}

func TestDrawScene_DiagonalGradient(t *testing.T) {
	face, err := loadFace()
	require.NoError(t, err)

	dc := gg.NewContext(100, 100)
	drawScene(dc, face, "", nil)
	img := dc.Image()

	near := func(a, b uint32) bool {
		d := int64(a) - int64(b)
		return d > -0x300 && d < 0x300
	}
	topRightR, topRightG, topRightB, _ := img.At(99, 0).RGBA()
	bottomLeftR, bottomLeftG, bottomLeftB, _ := img.At(0, 99).RGBA()
	assert.True(t, near(topRightR, bottomLeftR) && near(topRightG, bottomLeftG) && near(topRightB, bottomLeftB),
		"opposite corners sit on the same diagonal")

	topLeft := img.At(0, 0)
	assert.NotEqual(t, topLeft, img.At(99, 0), "the top row is shaded")
	assert.NotEqual(t, topLeft, img.At(99, 99))
}
