package ai

import (
	"context"

	"google.golang.org/genai"
)

// Generator defines the contract for a generative model backend
type Generator interface {
	// GenerateJSON returns the raw text of a response constrained to schema
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	// GenerateImage returns one encoded portrait image for prompt
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
