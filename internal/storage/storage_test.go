package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

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
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) List(prefix string) ([]string, error) {
	args := m.Called(prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) Delete(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

func TestFileStorage(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Retrieve("missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Store("state.json", []byte(`{"a":1}`)))
	require.NoError(t, store.Store("renders/v1.webm", []byte("video")))

	data, err := store.Retrieve("state.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), data)

	names, err := store.List("renders/")
	require.NoError(t, err)
	assert.Equal(t, []string{"renders/v1.webm"}, names)

	require.NoError(t, store.Delete("renders/v1.webm"))
	require.NoError(t, store.Delete("renders/v1.webm"))
	names, err = store.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"state.json"}, names)
}

func TestFileStorage_RejectsEscapingNames(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Store("../outside.json", []byte("x")))
	assert.Error(t, store.Store("/etc/passwd", []byte("x")))
}

func TestStateStore_RoundTripStripsTransient(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileStorage(dir)
	require.NoError(t, err)
	store := NewStateStore(backend)

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	state := models.DefaultState()
	state.IsAutomated = true
	state.LastAutomationTimestamp = &ts
	state.YouTube = models.YouTubeState{Connected: true, AccessToken: "tok", ChannelName: "Facts"}
	state.Videos = []models.Video{{ID: "yt1", YouTubeVideoID: "yt1", Status: models.StatusUploaded, Title: "T"}}
	state.IsGenerating = true
	state.SelectedVideo = &state.Videos[0]
	state.IsReplying = "c1"
	state.CommentError = "boom"

	require.NoError(t, store.Save(state))

	raw, err := os.ReadFile(filepath.Join(dir, StateKey))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isGenerating")
	assert.NotContains(t, string(raw), "selectedVideo")
	assert.Contains(t, string(raw), `"status":"Uploaded"`)

	loaded := store.Load()
	assert.True(t, loaded.IsAutomated)
	require.NotNil(t, loaded.LastAutomationTimestamp)
	assert.True(t, ts.Equal(*loaded.LastAutomationTimestamp))
	assert.Equal(t, "tok", loaded.YouTube.AccessToken)
	assert.Equal(t, models.StatusUploaded, loaded.Videos[0].Status)
	assert.False(t, loaded.IsGenerating)
	assert.Nil(t, loaded.SelectedVideo)
	assert.Empty(t, loaded.IsReplying)
	assert.Empty(t, loaded.CommentError)
}

func TestStateStore_LoadDefaults(t *testing.T) {
	backend := &MockStorage{}
	backend.On("Retrieve", StateKey).Return(nil, ErrNotFound)

	state := NewStateStore(backend).Load()
	assert.Equal(t, models.DefaultTopic, state.VideoTopic)
	assert.Equal(t, models.DefaultTopic, state.StrategyNiche)
	assert.NotNil(t, state.Videos)
	backend.AssertExpectations(t)
}

func TestStateStore_LoadMergesPartialBlob(t *testing.T) {
	backend := &MockStorage{}
	backend.On("Retrieve", StateKey).Return([]byte(`{"isAutomated":true,"isGenerating":true}`), nil)

	state := NewStateStore(backend).Load()
	assert.True(t, state.IsAutomated)
	assert.False(t, state.IsGenerating)
	assert.Equal(t, models.DefaultTopic, state.VideoTopic)
}

func TestStateStore_LoadCorruptBlob(t *testing.T) {
	backend := &MockStorage{}
	backend.On("Retrieve", StateKey).Return([]byte(`{not json`), nil)

	state := NewStateStore(backend).Load()
	assert.Equal(t, models.DefaultState().VideoTopic, state.VideoTopic)
	assert.Empty(t, state.Videos)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/json", ContentTypeFor(StateKey))
	assert.Equal(t, "video/webm", ContentTypeFor("renders/vid_1.webm"))
	assert.Equal(t, "video/mp4", ContentTypeFor("renders/vid_1.mp4"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("renders/vid_1"))
}
