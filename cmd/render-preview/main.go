package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shortsforge/automation-engine/internal/ai"
	"github.com/shortsforge/automation-engine/internal/media"
	"github.com/shortsforge/automation-engine/internal/models"
)

// previewScript is the input file: a title, five script lines and optional
// image paths (one per scene).
type previewScript struct {
	Title  string   `json:"title"`
	Script []string `json:"script"`
	Images []string `json:"images"`
}

func main() {
	input := flag.String("script", "", "JSON file with title, script and optional images")
	output := flag.String("out", "preview.webm", "where to write the rendered video")
	flag.Parse()

	fmt.Println("🎬 Shorts Render Preview")
	fmt.Println(strings.Repeat("=", 40))

	preview := samplePreview()
	if *input != "" {
		data, err := os.ReadFile(*input)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *input, err)
		}
		if err := json.Unmarshal(data, &preview); err != nil {
			log.Fatalf("Failed to parse %s: %v", *input, err)
		}
	}

	if err := ai.ValidateVideoContent(&models.VideoContent{
		Title:        preview.Title,
		Script:       preview.Script,
		ImagePrompts: make([]string, ai.ImagePrompts),
	}); err != nil {
		log.Fatalf("Invalid preview script: %v", err)
	}

	images, err := loadImages(preview.Images, ai.ImagePrompts)
	if err != nil {
		log.Fatalf("Failed to load images: %v", err)
	}

	synthesizer, err := media.NewSynthesizer(media.NewFFmpegEncoder(""))
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	fmt.Printf("📝 Title: %s\n", preview.Title)
	for i, line := range preview.Script {
		fmt.Printf("   %d. %s\n", i+1, line)
	}

	start := time.Now()
	blob, err := synthesizer.Render(context.Background(), preview.Title, preview.Script, images)
	if err != nil {
		log.Fatalf("❌ Render failed: %v", err)
	}

	if err := os.WriteFile(*output, blob.Data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}

	fmt.Printf("\n✅ Rendered %s (%s, %d KB) in %v\n", *output, blob.MIMEType, len(blob.Data)/1024, time.Since(start).Round(time.Millisecond))
}

func samplePreview() previewScript {
	return previewScript{
		Title: "5 Facts About the Library of Alexandria",
		Script: []string{
			"It held hundreds of thousands of scrolls.",
			"Ships arriving in port had their books copied.",
			"Scholars were paid to study there.",
			"It declined over centuries, not in one fire.",
			"Its legacy shaped every library since.",
		},
	}
}

// loadImages reads the given files, or draws flat placeholder images when
// none are given
func loadImages(paths []string, n int) ([][]byte, error) {
	if len(paths) == 0 {
		images := make([][]byte, n)
		for i := range images {
			img, err := placeholder(i)
			if err != nil {
				return nil, err
			}
			images[i] = img
		}
		return images, nil
	}

	if len(paths) != n {
		return nil, fmt.Errorf("need %d images, got %d", n, len(paths))
	}

	images := make([][]byte, n)
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		images[i] = data
	}
	return images, nil
}

func placeholder(i int) ([]byte, error) {
	palette := []color.RGBA{
		{0x1e, 0x3a, 0x8a, 0xff},
		{0x7c, 0x2d, 0x12, 0xff},
		{0x06, 0x5f, 0x46, 0xff},
		{0x58, 0x1c, 0x87, 0xff},
		{0x9a, 0x34, 0x12, 0xff},
		{0x11, 0x18, 0x27, 0xff},
	}

	img := image.NewRGBA(image.Rect(0, 0, 1024, 1024))
	c := palette[i%len(palette)]
	for y := 0; y < 1024; y++ {
		for x := 0; x < 1024; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
