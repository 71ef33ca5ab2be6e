package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiGenerator talks to the Gemini API. The client is created on first
// use so a missing key only fails the operations that need it.
type GeminiGenerator struct {
	apiKey       string
	contentModel string
	imageModel   string

	mu     sync.Mutex
	client *genai.Client
}

// Ensure GeminiGenerator implements Generator
var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator for the given models
func NewGeminiGenerator(apiKey, contentModel, imageModel string) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:       apiKey,
		contentModel: contentModel,
		imageModel:   imageModel,
	}
}

func (g *GeminiGenerator) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logrus.Debugf("Initialized Gemini client (content=%s, image=%s)", g.contentModel, g.imageModel)
	g.client = client
	return client, nil
}

// GenerateJSON asks the content model for JSON matching schema
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := client.Models.GenerateContent(ctx, g.contentModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	return result.Text(), nil
}

// GenerateImage asks the image model for a single 9:16 PNG
func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	result, err := client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
		AspectRatio:    "9:16",
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil || len(result.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("image generation returned no image for prompt %q", prompt)
	}

	return result.GeneratedImages[0].Image.ImageBytes, nil
}
