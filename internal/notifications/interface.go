package notifications

import "github.com/shortsforge/automation-engine/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendRunReport(report *models.RunReport) error
	SendAlert(alert *models.Alert) error
}
