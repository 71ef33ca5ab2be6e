package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// StateKey is the fixed object name of the persisted engine state
const StateKey = "youtube-automation-state.json"

// StateStore persists AppState without its transient fields
type StateStore struct {
	backend StorageInterface
}

// NewStateStore creates a state store on top of any backend
func NewStateStore(backend StorageInterface) *StateStore {
	return &StateStore{backend: backend}
}

// Load returns the saved state merged over the defaults with every transient
// field reset. A missing or unreadable blob yields the defaults.
func (s *StateStore) Load() models.AppState {
	state := models.DefaultState()

	data, err := s.backend.Retrieve(StateKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logrus.Errorf("Could not load state, starting fresh: %v", err)
		}
		return state
	}

	if err := json.Unmarshal(data, &state); err != nil {
		logrus.Errorf("Saved state is corrupt, starting fresh: %v", err)
		return models.DefaultState()
	}

	if state.Videos == nil {
		state.Videos = []models.Video{}
	}
	if state.StatsHistory == nil {
		state.StatsHistory = []models.StatsSnapshot{}
	}
	if state.StrategyIdeas == nil {
		state.StrategyIdeas = []models.StrategyIdea{}
	}
	if state.YouTube.Connected && state.YouTube.AccessToken == "" {
		state.YouTube = models.DisconnectedYouTube()
	}

	return state.WithoutTransient()
}

// Save writes the state with transient fields stripped
func (s *StateStore) Save(state models.AppState) error {
	data, err := json.Marshal(state.WithoutTransient())
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.backend.Store(StateKey, data); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
