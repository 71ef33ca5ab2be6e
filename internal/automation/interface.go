package automation

import (
	"context"

	"github.com/shortsforge/automation-engine/internal/media"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/stats"
)

// ContentGenerator produces the AI assets of a video, reply suggestions and
// strategy ideas
type ContentGenerator interface {
	GenerateVideoContent(ctx context.Context, topic string) (*models.VideoContent, error)
	GenerateImages(ctx context.Context, prompts []string) ([][]byte, error)
	AnalyzeComment(ctx context.Context, commentText string) (*models.AIAnalysis, error)
	GenerateStrategy(ctx context.Context, niche string) ([]models.StrategyIdea, error)
}

// Renderer turns a title, script and scene images into an encoded video
type Renderer interface {
	Render(ctx context.Context, title string, script []string, images [][]byte) (*media.Blob, error)
}

// StatsCollector reconciles channel statistics
type StatsCollector interface {
	Collect(ctx context.Context, token string) (*stats.Result, error)
}

// StateStore persists the engine state between restarts
type StateStore interface {
	Load() models.AppState
	Save(state models.AppState) error
}

// RunRecorder receives run outcomes and counters
type RunRecorder interface {
	RecordRun(report *models.RunReport)
	RecordSentiment(sentiment models.Sentiment)
	RecordStatsRefresh(err error)
}
