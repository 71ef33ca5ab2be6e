package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	args := m.Called(prompt, schema)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(prompt)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

const validContent = "```json\n" + `{"title":"Tiny Wars","script":["a","b","c","d","e"],"description":"desc","tags":["history"],"imagePrompts":["p0","p1","p2","p3","p4","p5"]}` + "\n```"

func TestService_GenerateVideoContent(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateJSON", mock.MatchedBy(func(p string) bool { return strings.Contains(p, "tiny wars") }), videoContentSchema).
		Return(validContent, nil)

	content, err := NewService(gen).GenerateVideoContent(context.Background(), "tiny wars")
	require.NoError(t, err)
	assert.Equal(t, "Tiny Wars", content.Title)
	assert.Len(t, content.Script, ScriptLines)
	assert.Len(t, content.ImagePrompts, ImagePrompts)
	gen.AssertExpectations(t)
}

func TestService_GenerateVideoContent_WrongCounts(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateJSON", mock.Anything, mock.Anything).
		Return(`{"title":"T","script":["a","b","c","d"],"description":"","tags":[],"imagePrompts":["1","2","3","4","5","6"]}`, nil)

	_, err := NewService(gen).GenerateVideoContent(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSchemaResult))
	gen.AssertNotCalled(t, "GenerateImage", mock.Anything)
}

func TestService_GenerateVideoContent_Malformed(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateJSON", mock.Anything, mock.Anything).Return("not json at all", nil)

	_, err := NewService(gen).GenerateVideoContent(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestValidateVideoContent(t *testing.T) {
	tests := []struct {
		name    string
		content models.VideoContent
		wantErr bool
	}{
		{name: "valid", content: models.VideoContent{Title: "t", Script: make([]string, 5), ImagePrompts: make([]string, 6)}},
		{name: "empty title", content: models.VideoContent{Script: make([]string, 5), ImagePrompts: make([]string, 6)}, wantErr: true},
		{name: "six script lines", content: models.VideoContent{Title: "t", Script: make([]string, 6), ImagePrompts: make([]string, 6)}, wantErr: true},
		{name: "five prompts", content: models.VideoContent{Title: "t", Script: make([]string, 5), ImagePrompts: make([]string, 5)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVideoContent(&tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSchemaResult)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_GenerateImages_PreservesOrder(t *testing.T) {
	gen := &MockGenerator{}
	prompts := []string{"p0", "p1", "p2"}
	for _, p := range prompts {
		gen.On("GenerateImage", p).Return([]byte(p), nil)
	}

	images, err := NewService(gen).GenerateImages(context.Background(), prompts)
	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, p := range prompts {
		assert.Equal(t, []byte(p), images[i])
	}
}

func TestService_GenerateImages_Failure(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateImage", "ok").Return([]byte("x"), nil).Maybe()
	gen.On("GenerateImage", "bad").Return(nil, errors.New("quota"))

	_, err := NewService(gen).GenerateImages(context.Background(), []string{"ok", "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestService_AnalyzeComment(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateJSON", mock.Anything, analysisSchema).
		Return(`{"sentiment":"question","suggestedReply":"Great question!"}`, nil)

	analysis, err := NewService(gen).AnalyzeComment(context.Background(), "How old is it?")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentQuestion, analysis.Sentiment)
	assert.Equal(t, "Great question!", analysis.SuggestedReply)
}

func TestService_AnalyzeComment_UnknownSentiment(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateJSON", mock.Anything, analysisSchema).
		Return(`{"sentiment":"Furious","suggestedReply":"Sorry"}`, nil)

	_, err := NewService(gen).AnalyzeComment(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidSchemaResult)
}

func TestService_GenerateStrategy(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateJSON", mock.Anything, strategySchema).
		Return(`[{"title":"A","concept":"c","reason":"r"},{"title":"B","concept":"c","reason":"r"}]`, nil)

	ideas, err := NewService(gen).GenerateStrategy(context.Background(), "space")
	require.NoError(t, err)
	assert.Len(t, ideas, 2)
	assert.Equal(t, "B", ideas[1].Title)
}

func TestGeminiGenerator_NotConfigured(t *testing.T) {
	gen := NewGeminiGenerator("", "m", "i")

	_, err := gen.GenerateJSON(context.Background(), "p", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = gen.GenerateImage(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
