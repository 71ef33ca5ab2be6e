package monitoring

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shortsforge/automation-engine/internal/config"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/notifications"
	"github.com/shortsforge/automation-engine/internal/storage"
	"github.com/sirupsen/logrus"
)

// FailureAlertThreshold is the number of consecutive failed automated runs
// that raises a critical alert.
const FailureAlertThreshold = 3

const runPrefix = "runs/"

// Service keeps run metrics, archives run reports and forwards them to the
// notification channels.
type Service struct {
	config              *config.Config
	storage             storage.StorageInterface
	notificationService notifications.NotificationInterface
	metrics             *Metrics
	now                 func() time.Time
	mu                  sync.RWMutex
}

// Metrics holds pipeline metrics
type Metrics struct {
	TotalRuns           int            `json:"total_runs"`
	SuccessfulRuns      int            `json:"successful_runs"`
	FailedRuns          int            `json:"failed_runs"`
	AutomatedRuns       int            `json:"automated_runs"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
	LastRun             time.Time      `json:"last_run"`
	LastRunDuration     string         `json:"last_run_duration"`
	LastError           string         `json:"last_error,omitempty"`
	StatusBreakdown     map[string]int `json:"status_breakdown"`
	SentimentBreakdown  map[string]int `json:"sentiment_breakdown"`
	StatsRefreshes      int            `json:"stats_refreshes"`
	StatsFailures       int            `json:"stats_failures"`
}

// NewService creates a new monitoring service
func NewService(cfg *config.Config, storage storage.StorageInterface, notificationService notifications.NotificationInterface) *Service {
	return &Service{
		config:              cfg,
		storage:             storage,
		notificationService: notificationService,
		metrics: &Metrics{
			StatusBreakdown:    make(map[string]int),
			SentimentBreakdown: make(map[string]int),
		},
		now: time.Now,
	}
}

// RecordRun updates the metrics with a finished pipeline run. Automated runs
// are archived and reported; a streak of failures raises an alert.
func (s *Service) RecordRun(report *models.RunReport) {
	s.mu.Lock()
	s.metrics.TotalRuns++
	if report.Automated {
		s.metrics.AutomatedRuns++
	}
	s.metrics.LastRun = report.FinishedAt
	s.metrics.LastRunDuration = report.Duration.String()
	s.metrics.StatusBreakdown[report.Status.String()]++

	if report.Status == models.StatusFailed {
		s.metrics.FailedRuns++
		s.metrics.ConsecutiveFailures++
		s.metrics.LastError = report.Error
	} else {
		s.metrics.SuccessfulRuns++
		s.metrics.ConsecutiveFailures = 0
	}
	streak := s.metrics.ConsecutiveFailures
	s.mu.Unlock()

	logrus.Infof("Run finished: %s %q in %v", report.Status, report.Title, report.Duration)

	if err := s.storeRun(report); err != nil {
		logrus.Errorf("Failed to store run report: %v", err)
	}

	if !report.Automated || s.notificationService == nil {
		return
	}

	if err := s.notificationService.SendRunReport(report); err != nil {
		logrus.Errorf("Failed to send run report: %v", err)
	}

	if streak == FailureAlertThreshold {
		alert := &models.Alert{
			ID:        uuid.NewString(),
			Type:      "critical",
			Title:     "Automation is failing",
			Message:   fmt.Sprintf("%d automated runs failed in a row. Last error: %s", streak, report.Error),
			CreatedAt: s.now(),
		}
		if err := s.notificationService.SendAlert(alert); err != nil {
			logrus.Errorf("Failed to send alert: %v", err)
		}
	}
}

// RecordSentiment counts one analysed comment
func (s *Service) RecordSentiment(sentiment models.Sentiment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.SentimentBreakdown[string(sentiment)]++
}

// RecordStatsRefresh counts a stats refresh and its outcome
func (s *Service) RecordStatsRefresh(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.StatsRefreshes++
	if err != nil {
		s.metrics.StatsFailures++
	}
}

func (s *Service) storeRun(report *models.RunReport) error {
	if s.storage == nil {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	filename := fmt.Sprintf("%srun-%s-%s.json", runPrefix, report.FinishedAt.UTC().Format("2006-01-02-15-04-05"), report.VideoID)
	return s.storage.Store(filename, data)
}

// RecentRuns loads up to limit archived run reports, newest first
func (s *Service) RecentRuns(limit int) ([]models.RunReport, error) {
	names, err := s.storage.List(runPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list run reports: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	runs := make([]models.RunReport, 0, len(names))
	for _, name := range names {
		data, err := s.storage.Retrieve(name)
		if err != nil {
			logrus.Warnf("Skipping run report %s: %v", name, err)
			continue
		}
		var report models.RunReport
		if err := json.Unmarshal(data, &report); err != nil {
			logrus.Warnf("Skipping corrupt run report %s: %v", name, err)
			continue
		}
		runs = append(runs, report)
	}

	return runs, nil
}

// Snapshot returns a copy of the current metrics
func (s *Service) Snapshot() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := *s.metrics
	m.StatusBreakdown = copyCounts(s.metrics.StatusBreakdown)
	m.SentimentBreakdown = copyCounts(s.metrics.SentimentBreakdown)
	return m
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
