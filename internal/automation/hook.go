package automation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shortsforge/automation-engine/internal/events"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/scheduler"
	"github.com/shortsforge/automation-engine/internal/storage"
	"github.com/shortsforge/automation-engine/internal/youtube"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultInterval is the nominal cadence of automated runs
	DefaultInterval = 30 * time.Minute
	// DefaultFailureBackoff is the minimum wait after a failed or skipped automated run
	DefaultFailureBackoff = time.Minute
)

// ErrClosed is returned once the hook has been shut down
var ErrClosed = errors.New("automation engine is shut down")

// Deps are the collaborators of a Hook. Recorder, Events and Archive are optional.
type Deps struct {
	Store    StateStore
	AI       ContentGenerator
	YouTube  youtube.API
	Renderer Renderer
	Stats    StatsCollector
	Clock    scheduler.Clock
	Recorder RunRecorder
	Events   events.Publisher
	Archive  storage.StorageInterface
}

// Options tune the automation cadence
type Options struct {
	Interval       time.Duration
	FailureBackoff time.Duration
}

// Hook owns the application state. Every mutation goes through update, which
// builds the next state from a clone of the latest one and persists it.
type Hook struct {
	store    StateStore
	ai       ContentGenerator
	youtube  youtube.API
	renderer Renderer
	stats    StatsCollector
	clock    scheduler.Clock
	recorder RunRecorder
	events   events.Publisher
	archive  storage.StorageInterface

	interval       time.Duration
	failureBackoff time.Duration

	slot *scheduler.Slot

	mu          sync.Mutex
	state       models.AppState
	lastFailure *time.Time
	closed      bool

	saveMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New restores the persisted state and returns an idle hook. Call Start to
// reconnect and resume automation.
func New(deps Deps, opts Options) *Hook {
	if deps.Clock == nil {
		deps.Clock = scheduler.RealClock()
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FailureBackoff < 0 {
		opts.FailureBackoff = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hook{
		store:          deps.Store,
		ai:             deps.AI,
		youtube:        deps.YouTube,
		renderer:       deps.Renderer,
		stats:          deps.Stats,
		clock:          deps.Clock,
		recorder:       deps.Recorder,
		events:         deps.Events,
		archive:        deps.Archive,
		interval:       opts.Interval,
		failureBackoff: opts.FailureBackoff,
		slot:           scheduler.NewSlot(deps.Clock),
		ctx:            ctx,
		cancel:         cancel,
	}

	h.state = models.DefaultState()
	if h.store != nil {
		h.state = h.store.Load()
	}

	return h
}

// Start reconnects a stored but disconnected token and resumes automation
// when it was enabled before the restart.
func (h *Hook) Start(ctx context.Context) error {
	state := h.Snapshot()

	if state.YouTube.AccessToken != "" && !state.YouTube.Connected {
		logrus.Info("Reconnecting stored YouTube session")
		return h.ConnectSuccess(ctx, state.YouTube.AccessToken)
	}

	h.scheduleNext()
	return nil
}

// Close cancels the automation timer and waits for background work until ctx
// expires. In-flight pipeline calls are not interrupted before that.
func (h *Hook) Close(ctx context.Context) error {
	h.slot.Close()

	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		logrus.Warn("Shutting down with work still in flight")
	}

	h.cancel()
	return err
}

// Snapshot returns a deep copy of the current state
func (h *Hook) Snapshot() models.AppState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Clone()
}

// NextRun reports when the next automated run is due
func (h *Hook) NextRun() (time.Time, bool) {
	return h.slot.Pending()
}

func (h *Hook) update(fn func(s *models.AppState)) models.AppState {
	next, _ := h.tryUpdate(func(s *models.AppState) bool {
		fn(s)
		return true
	})
	return next
}

// tryUpdate applies fn to a clone of the current state and commits it only
// when fn returns true. Check and set happen under one lock.
func (h *Hook) tryUpdate(fn func(s *models.AppState) bool) (models.AppState, bool) {
	h.mu.Lock()
	next := h.state.Clone()
	if !fn(&next) {
		current := h.state.Clone()
		h.mu.Unlock()
		return current, false
	}
	h.state = next
	out := next.Clone()
	h.mu.Unlock()

	h.persist()
	return out, true
}

// persist saves the latest state, so a late save can never overwrite a newer one
func (h *Hook) persist() {
	if h.store == nil {
		return
	}

	h.saveMu.Lock()
	defer h.saveMu.Unlock()

	if err := h.store.Save(h.Snapshot()); err != nil {
		logrus.Errorf("Could not save state: %v", err)
	}
}

// goTracked runs f in the background unless the hook is closed
func (h *Hook) goTracked(f func()) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		f()
	}()
	return true
}

func (h *Hook) publish(video models.Video, automated bool) {
	event := &models.VideoEvent{
		VideoID:        video.ID,
		YouTubeVideoID: video.YouTubeVideoID,
		Title:          video.Title,
		Status:         video.Status,
		Automated:      automated,
		OccurredAt:     h.clock.Now(),
	}
	if video.Status == models.StatusFailed {
		event.Error = video.Description
	}

	if err := h.events.Publish(event); err != nil {
		logrus.Warnf("Could not publish %s event for %s: %v", video.Status, video.ID, err)
	}
}
