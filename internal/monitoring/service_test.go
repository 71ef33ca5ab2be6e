package monitoring

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shortsforge/automation-engine/internal/config"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a mock implementation of the storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(filename string, data []byte) error {
	args := m.Called(filename, data)
	return args.Error(0)
}

func (m *MockStorage) Retrieve(filename string) ([]byte, error) {
	args := m.Called(filename)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) List(prefix string) ([]string, error) {
	args := m.Called(prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) Delete(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of the notification service
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendRunReport(report *models.RunReport) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockNotificationService) SendAlert(alert *models.Alert) error {
	args := m.Called(alert)
	return args.Error(0)
}

func run(status models.VideoStatus, automated bool) *models.RunReport {
	finished := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := &models.RunReport{
		VideoID:    "vid",
		Title:      "T",
		Topic:      "facts",
		Automated:  automated,
		Status:     status,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
		Duration:   time.Minute,
	}
	if status == models.StatusFailed {
		r.Error = "boom"
	}
	return r
}

func TestService_RecordRun_Manual(t *testing.T) {
	mockStorage := &MockStorage{}
	mockNotifications := &MockNotificationService{}
	mockStorage.On("Store", "runs/run-2024-05-01-10-00-00-vid.json", mock.Anything).Return(nil)

	service := NewService(&config.Config{}, mockStorage, mockNotifications)
	service.RecordRun(run(models.StatusUploaded, false))

	m := service.Snapshot()
	assert.Equal(t, 1, m.TotalRuns)
	assert.Equal(t, 1, m.SuccessfulRuns)
	assert.Equal(t, 0, m.AutomatedRuns)
	assert.Equal(t, 1, m.StatusBreakdown["Uploaded"])

	mockStorage.AssertExpectations(t)
	mockNotifications.AssertNotCalled(t, "SendRunReport", mock.Anything)
}

func TestService_RecordRun_AlertsOnFailureStreak(t *testing.T) {
	mockStorage := &MockStorage{}
	mockNotifications := &MockNotificationService{}
	mockStorage.On("Store", mock.Anything, mock.Anything).Return(nil)
	mockNotifications.On("SendRunReport", mock.Anything).Return(nil)
	mockNotifications.On("SendAlert", mock.MatchedBy(func(a *models.Alert) bool {
		return a.Type == "critical" && strings.Contains(a.Message, "boom")
	})).Return(nil).Once()

	service := NewService(&config.Config{}, mockStorage, mockNotifications)
	for i := 0; i < FailureAlertThreshold+1; i++ {
		service.RecordRun(run(models.StatusFailed, true))
	}

	m := service.Snapshot()
	assert.Equal(t, FailureAlertThreshold+1, m.FailedRuns)
	assert.Equal(t, FailureAlertThreshold+1, m.ConsecutiveFailures)
	assert.Equal(t, "boom", m.LastError)
	mockNotifications.AssertNumberOfCalls(t, "SendRunReport", FailureAlertThreshold+1)
	mockNotifications.AssertNumberOfCalls(t, "SendAlert", 1)

	service.RecordRun(run(models.StatusUploaded, true))
	assert.Equal(t, 0, service.Snapshot().ConsecutiveFailures)
}

func TestService_RecordRun_NotificationErrorIsLogged(t *testing.T) {
	mockStorage := &MockStorage{}
	mockNotifications := &MockNotificationService{}
	mockStorage.On("Store", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	mockNotifications.On("SendRunReport", mock.Anything).Return(errors.New("webhook down"))

	service := NewService(&config.Config{}, mockStorage, mockNotifications)
	assert.NotPanics(t, func() { service.RecordRun(run(models.StatusUploaded, true)) })
	assert.Equal(t, 1, service.Snapshot().TotalRuns)
}

func TestService_RecentRuns(t *testing.T) {
	older := run(models.StatusFailed, true)
	newer := run(models.StatusUploaded, true)
	newer.VideoID = "yt2"
	olderData, _ := json.Marshal(older)
	newerData, _ := json.Marshal(newer)

	mockStorage := &MockStorage{}
	mockStorage.On("List", "runs/").Return([]string{"runs/run-2024-05-01-09.json", "runs/run-2024-05-01-10.json", "runs/run-bad.json"}, nil)
	mockStorage.On("Retrieve", "runs/run-2024-05-01-10.json").Return(newerData, nil)
	mockStorage.On("Retrieve", "runs/run-2024-05-01-09.json").Return(olderData, nil)
	mockStorage.On("Retrieve", "runs/run-bad.json").Return([]byte("{not json"), nil)

	service := NewService(&config.Config{}, mockStorage, nil)
	runs, err := service.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "yt2", runs[0].VideoID)
}

func TestService_GetMetrics(t *testing.T) {
	service := NewService(&config.Config{}, nil, nil)
	service.RecordSentiment(models.SentimentQuestion)
	service.RecordSentiment(models.SentimentQuestion)
	service.RecordStatsRefresh(nil)
	service.RecordStatsRefresh(errors.New("quota"))

	var m Metrics
	require.NoError(t, json.Unmarshal([]byte(service.GetMetrics()), &m))
	assert.Equal(t, 2, m.SentimentBreakdown["Question"])
	assert.Equal(t, 2, m.StatsRefreshes)
	assert.Equal(t, 1, m.StatsFailures)
}
