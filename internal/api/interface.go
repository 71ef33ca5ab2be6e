package api

import (
	"context"
	"time"

	"github.com/shortsforge/automation-engine/internal/models"
)

// Engine is the set of operations the HTTP API exposes
type Engine interface {
	Snapshot() models.AppState
	NextRun() (time.Time, bool)
	SetVideoTopic(topic string)
	StartGeneration(automated bool) bool
	SelectVideo(id string) bool
	FetchComments(ctx context.Context, youtubeVideoID string) error
	GenerateReplySuggestion(ctx context.Context, commentID, text string) error
	PostReply(ctx context.Context, parentID, text string) error
	RefreshStats(ctx context.Context) error
	ToggleAutomation() bool
	ConnectSuccess(ctx context.Context, token string) error
	ConnectError(cause string)
	Disconnect()
	SetStrategyNiche(niche string)
	GenerateContentStrategy(ctx context.Context) error
	SelectStrategyIdea(idea models.StrategyIdea)
}

// MetricsSource renders the monitoring counters as JSON
type MetricsSource interface {
	GetMetrics() string
}
