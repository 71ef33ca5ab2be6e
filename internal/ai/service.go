package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

const (
	// ScriptLines is the number of narration lines in a generated short
	ScriptLines = 5
	// ImagePrompts is one prompt per scene: the title card plus each script line
	ImagePrompts = ScriptLines + 1
	// StrategyIdeas is the number of ideas requested from the planner
	StrategyIdeas = 6
)

// Service builds prompts, decodes and validates model output
type Service struct {
	generator Generator
}

// NewService creates a new AI service on top of a generator
func NewService(generator Generator) *Service {
	return &Service{generator: generator}
}

var videoContentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString, Description: "A short, catchy title for a YouTube Short (under 70 characters)."},
		"script":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Exactly 5 short narration lines, one per scene."},
		"description": {Type: genai.TypeString, Description: "An SEO-friendly video description."},
		"tags":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Relevant search tags."},
		"imagePrompts": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Exactly 6 vivid image generation prompts: one for the title card, then one per script line.",
		},
	},
	Required: []string{"title", "script", "description", "tags", "imagePrompts"},
}

// GenerateVideoContent produces validated metadata and script for topic
func (s *Service) GenerateVideoContent(ctx context.Context, topic string) (*models.VideoContent, error) {
	prompt := fmt.Sprintf("Generate content for a viral YouTube Shorts video about %s. "+
		"Build an engaging, visual narrative. Keep it factual, surprising and easy to follow.", topic)

	text, err := s.generator.GenerateJSON(ctx, prompt, videoContentSchema)
	if err != nil {
		return nil, err
	}

	content, err := Decode[models.VideoContent](text)
	if err != nil {
		return nil, err
	}

	if err := ValidateVideoContent(&content); err != nil {
		return nil, err
	}

	return &content, nil
}

// ValidateVideoContent enforces the scene counts the renderer depends on
func ValidateVideoContent(content *models.VideoContent) error {
	if strings.TrimSpace(content.Title) == "" || len(content.Script) != ScriptLines || len(content.ImagePrompts) != ImagePrompts {
		return fmt.Errorf("%w. Expected %d script points and %d image prompts (got %d and %d)",
			ErrInvalidSchemaResult, ScriptLines, ImagePrompts, len(content.Script), len(content.ImagePrompts))
	}
	return nil
}

// GenerateImages produces one image per prompt, concurrently, preserving order
func (s *Service) GenerateImages(ctx context.Context, prompts []string) ([][]byte, error) {
	images := make([][]byte, len(prompts))
	g, gctx := errgroup.WithContext(ctx)

	for i, prompt := range prompts {
		g.Go(func() error {
			img, err := s.generator.GenerateImage(gctx, prompt)
			if err != nil {
				return fmt.Errorf("image %d: %w", i+1, err)
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logrus.Debugf("Generated %d images", len(images))
	return images, nil
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sentiment": {
			Type:        genai.TypeString,
			Enum:        sentimentNames(),
			Description: "The sentiment of the comment.",
		},
		"suggestedReply": {Type: genai.TypeString, Description: "A friendly, concise reply to the comment."},
	},
	Required: []string{"sentiment", "suggestedReply"},
}

// AnalyzeComment classifies a comment and suggests a reply
func (s *Service) AnalyzeComment(ctx context.Context, commentText string) (*models.AIAnalysis, error) {
	prompt := fmt.Sprintf("Analyze the sentiment of a YouTube comment and write a reply. "+
		"The channel voice is informative and enthusiastic about interesting facts. "+
		"Classify the comment as exactly one of: %s. "+
		"Then write a short, friendly reply that fits that sentiment. Comment: %q",
		strings.Join(sentimentNames(), ", "), commentText)

	text, err := s.generator.GenerateJSON(ctx, prompt, analysisSchema)
	if err != nil {
		return nil, err
	}

	raw, err := Decode[struct {
		Sentiment      string `json:"sentiment"`
		SuggestedReply string `json:"suggestedReply"`
	}](text)
	if err != nil {
		return nil, err
	}

	if raw.SuggestedReply == "" {
		return nil, fmt.Errorf("%w: missing suggested reply", ErrInvalidSchemaResult)
	}
	sentiment, err := models.ParseSentiment(raw.Sentiment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaResult, err)
	}

	return &models.AIAnalysis{Sentiment: sentiment, SuggestedReply: raw.SuggestedReply}, nil
}

var strategySchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":   {Type: genai.TypeString, Description: "A catchy, search-friendly video title."},
			"concept": {Type: genai.TypeString, Description: "The angle of the video in one or two sentences."},
			"reason":  {Type: genai.TypeString, Description: "Why the idea has viral potential."},
		},
		Required: []string{"title", "concept", "reason"},
	},
}

// GenerateStrategy returns video ideas for a channel niche
func (s *Service) GenerateStrategy(ctx context.Context, niche string) ([]models.StrategyIdea, error) {
	prompt := fmt.Sprintf("Act as a YouTube growth strategist. Plan %d viral Shorts ideas for a channel about %q. "+
		"For each idea give a search-friendly title, a brief concept and the reason it can go viral.", StrategyIdeas, niche)

	text, err := s.generator.GenerateJSON(ctx, prompt, strategySchema)
	if err != nil {
		return nil, err
	}

	ideas, err := Decode[[]models.StrategyIdea](text)
	if err != nil {
		return nil, err
	}

	if len(ideas) == 0 {
		return nil, fmt.Errorf("%w: no strategy ideas returned", ErrInvalidSchemaResult)
	}
	for i, idea := range ideas {
		if strings.TrimSpace(idea.Title) == "" {
			return nil, fmt.Errorf("%w: idea %d has no title", ErrInvalidSchemaResult, i+1)
		}
	}

	return ideas, nil
}

func sentimentNames() []string {
	names := make([]string, len(models.AllSentiments))
	for i, s := range models.AllSentiments {
		names[i] = string(s)
	}
	return names
}
