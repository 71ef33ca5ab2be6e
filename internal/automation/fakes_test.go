package automation

import (
	"context"
	"sync"
	"time"

	"github.com/shortsforge/automation-engine/internal/media"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/scheduler"
	"github.com/shortsforge/automation-engine/internal/stats"
	"github.com/shortsforge/automation-engine/internal/youtube"
	"github.com/stretchr/testify/mock"
	"google.golang.org/genai"
)

// MockGenerator is a mock implementation of ai.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	args := m.Called(ctx, prompt, schema)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockYouTube is a mock implementation of youtube.API
type MockYouTube struct {
	mock.Mock
}

var _ youtube.API = (*MockYouTube)(nil)

func (m *MockYouTube) UploadVideo(ctx context.Context, token string, metadata youtube.VideoMetadata, video youtube.Media) (string, error) {
	args := m.Called(ctx, token, metadata, video)
	return args.String(0), args.Error(1)
}

func (m *MockYouTube) FetchProfile(ctx context.Context, token string) (*youtube.Profile, error) {
	args := m.Called(ctx, token)
	if p := args.Get(0); p != nil {
		return p.(*youtube.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockYouTube) ChannelDetails(ctx context.Context, token string) (*youtube.ChannelDetails, error) {
	args := m.Called(ctx, token)
	if d := args.Get(0); d != nil {
		return d.(*youtube.ChannelDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockYouTube) PlaylistVideoIDs(ctx context.Context, token, playlistID, pageToken string, maxResults int) ([]string, string, error) {
	args := m.Called(ctx, token, playlistID, pageToken, maxResults)
	return args.Get(0).([]string), args.String(1), args.Error(2)
}

func (m *MockYouTube) VideoStatistics(ctx context.Context, token string, ids []string) (map[string]models.VideoStats, error) {
	args := m.Called(ctx, token, ids)
	return args.Get(0).(map[string]models.VideoStats), args.Error(1)
}

func (m *MockYouTube) ListComments(ctx context.Context, token, videoID string) ([]models.Comment, error) {
	args := m.Called(ctx, token, videoID)
	if c := args.Get(0); c != nil {
		return c.([]models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockYouTube) PostReply(ctx context.Context, token, parentID, text string) error {
	args := m.Called(ctx, token, parentID, text)
	return args.Error(0)
}

// MockRenderer is a mock implementation of Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, title string, script []string, images [][]byte) (*media.Blob, error) {
	args := m.Called(ctx, title, script, images)
	if b := args.Get(0); b != nil {
		return b.(*media.Blob), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStats is a mock implementation of StatsCollector
type MockStats struct {
	mock.Mock
}

func (m *MockStats) Collect(ctx context.Context, token string) (*stats.Result, error) {
	args := m.Called(ctx, token)
	if r := args.Get(0); r != nil {
		return r.(*stats.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

// memStore keeps saved states in memory
type memStore struct {
	mu      sync.Mutex
	initial models.AppState
	saved   []models.AppState
}

func (s *memStore) Load() models.AppState { return s.initial.WithoutTransient() }

func (s *memStore) Save(state models.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, state.WithoutTransient())
	return nil
}

func (s *memStore) last() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[len(s.saved)-1]
}

// eventLog records published events
type eventLog struct {
	mu     sync.Mutex
	events []models.VideoEvent
}

func (l *eventLog) Publish(event *models.VideoEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *event)
	return nil
}

func (l *eventLog) Close() error { return nil }

func (l *eventLog) statuses() []models.VideoStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.VideoStatus, len(l.events))
	for i, e := range l.events {
		out[i] = e.Status
	}
	return out
}

// fakeClock records timers and fires them on demand
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) scheduler.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fire runs a timer the way the runtime would once its delay elapsed
func (c *fakeClock) fire(t *fakeTimer) {
	c.mu.Lock()
	t.stopped = true
	c.mu.Unlock()
	t.f()
}

func (c *fakeClock) active() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}
