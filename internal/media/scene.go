package media

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

const (
	CanvasWidth  = 1080
	CanvasHeight = 1920

	fontSize   = 80
	lineHeight = 100
	textWidth  = 0.9
	shadowBlur = 15
)

var (
	gradientTop    = color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	gradientBottom = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	overlay        = color.RGBA{A: 0x80}
)

// loadFace returns the bold caption face
func loadFace() (font.Face, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: fontSize}), nil
}

// drawScene paints one frame: gradient, cover-cropped image, dark overlay
// and the centered, wrapped caption with a soft shadow.
func drawScene(dc *gg.Context, face font.Face, caption string, img image.Image) {
	w, h := float64(dc.Width()), float64(dc.Height())

	gradient := gg.NewLinearGradient(0, 0, w, h)
	gradient.AddColorStop(0, gradientTop)
	gradient.AddColorStop(1, gradientBottom)
	dc.SetFillStyle(gradient)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	if img != nil {
		dc.DrawImage(coverImage(img, dc.Width(), dc.Height()), 0, 0)
		dc.SetColor(overlay)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	}

	dc.SetFontFace(face)
	lines := WrapText(caption, func(s string) float64 {
		width, _ := dc.MeasureString(s)
		return width
	}, w*textWidth)

	startY := (h - float64(len(lines)-1)*lineHeight) / 2
	for i, line := range lines {
		y := startY + float64(i)*lineHeight
		drawShadow(dc, line, w/2, y)
		dc.SetColor(color.White)
		dc.DrawStringAnchored(line, w/2, y, 0.5, 0.5)
	}
}

var shadowOffsets = func() [][2]float64 {
	var offsets [][2]float64
	step := float64(shadowBlur) / 3
	for dx := -float64(shadowBlur) / 2; dx <= float64(shadowBlur)/2; dx += step {
		for dy := -float64(shadowBlur) / 2; dy <= float64(shadowBlur)/2; dy += step {
			if math.Hypot(dx, dy) <= float64(shadowBlur)/2 {
				offsets = append(offsets, [2]float64{dx, dy})
			}
		}
	}
	return offsets
}()

// drawShadow approximates a blurred black text shadow by stamping the text
// at low opacity around the anchor.
func drawShadow(dc *gg.Context, text string, x, y float64) {
	dc.SetRGBA(0, 0, 0, 0.12)
	for _, o := range shadowOffsets {
		dc.DrawStringAnchored(text, x+o[0], y+o[1], 0.5, 0.5)
	}
}

// CoverCrop returns the centered source rectangle with the destination's
// aspect ratio, so scaling it fills the destination without distortion.
func CoverCrop(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rect(0, 0, srcW, srcH)
	}

	srcRatio := float64(srcW) / float64(srcH)
	dstRatio := float64(dstW) / float64(dstH)

	if srcRatio > dstRatio {
		cropW := int(math.Round(float64(srcH) * dstRatio))
		x0 := (srcW - cropW) / 2
		return image.Rect(x0, 0, x0+cropW, srcH)
	}

	cropH := int(math.Round(float64(srcW) / dstRatio))
	y0 := (srcH - cropH) / 2
	return image.Rect(0, y0, srcW, y0+cropH)
}

func coverImage(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	crop := CoverCrop(b.Dx(), b.Dy(), w, h).Add(b.Min)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}

// WrapText greedily breaks text into lines no wider than maxWidth. A single
// word wider than maxWidth gets a line of its own.
func WrapText(text string, measure func(string) float64, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		candidate := line + " " + word
		if measure(candidate) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	return append(lines, line)
}
