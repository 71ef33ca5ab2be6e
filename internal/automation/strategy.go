package automation

import (
	"context"
	"strings"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// SetVideoTopic sets the topic used by the next pipeline run
func (h *Hook) SetVideoTopic(topic string) {
	h.update(func(s *models.AppState) { s.VideoTopic = topic })
}

// SetStrategyNiche sets the niche the planner works on
func (h *Hook) SetStrategyNiche(niche string) {
	h.update(func(s *models.AppState) { s.StrategyNiche = niche })
}

// GenerateContentStrategy replaces the strategy ideas with a fresh plan for
// the current niche. Ignored while disconnected, without a niche or while a
// plan is already being generated.
func (h *Hook) GenerateContentStrategy(ctx context.Context) error {
	var niche string
	_, ok := h.tryUpdate(func(s *models.AppState) bool {
		if !s.YouTube.Connected || strings.TrimSpace(s.StrategyNiche) == "" || s.IsGeneratingStrategy {
			return false
		}
		niche = s.StrategyNiche
		s.IsGeneratingStrategy = true
		s.StrategyIdeas = []models.StrategyIdea{}
		return true
	})
	if !ok {
		return nil
	}

	ideas, err := h.ai.GenerateStrategy(ctx, niche)
	if err != nil {
		logrus.Errorf("Error generating content strategy: %v", err)
		h.update(func(s *models.AppState) { s.IsGeneratingStrategy = false })
		return err
	}

	h.update(func(s *models.AppState) {
		s.IsGeneratingStrategy = false
		s.StrategyIdeas = append([]models.StrategyIdea(nil), ideas...)
	})
	logrus.Infof("Generated %d strategy ideas for %q", len(ideas), niche)
	return nil
}

// SelectStrategyIdea uses the idea's title as the next video topic
func (h *Hook) SelectStrategyIdea(idea models.StrategyIdea) {
	h.SetVideoTopic(idea.Title)
}
