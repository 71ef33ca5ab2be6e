package events

import "github.com/shortsforge/automation-engine/internal/models"

// Publisher fans video status changes out to downstream consumers
type Publisher interface {
	Publish(event *models.VideoEvent) error
	Close() error
}
