package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FakeClock records timers and fires them on demand
type FakeClock struct {
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

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *FakeClock) active() []*fakeTimer {
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

func TestNextDelay(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	interval := 30 * time.Minute
	ago := func(d time.Duration) *time.Time { ts := now.Add(-d); return &ts }

	tests := []struct {
		name string
		last *time.Time
		want time.Duration
	}{
		{name: "never ran", last: nil, want: 0},
		{name: "ran 10 minutes ago", last: ago(10 * time.Minute), want: 20 * time.Minute},
		{name: "ran exactly one interval ago", last: ago(interval), want: 0},
		{name: "overdue", last: ago(2 * time.Hour), want: 0},
		{name: "just ran", last: ago(0), want: interval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDelay(interval, tt.last, now))
		})
	}
}

func TestSlot_ReplaceDoesNotStack(t *testing.T) {
	clock := &FakeClock{now: time.Now()}
	slot := NewSlot(clock)

	slot.Replace(time.Minute, func() {})
	slot.Replace(2*time.Minute, func() {})

	active := clock.active()
	require.Len(t, active, 1)
	assert.Equal(t, 2*time.Minute, active[0].delay)

	at, ok := slot.Pending()
	assert.True(t, ok)
	assert.Equal(t, clock.Now().Add(2*time.Minute), at)
}

func TestSlot_CancelIsIdempotent(t *testing.T) {
	clock := &FakeClock{now: time.Now()}
	slot := NewSlot(clock)

	h := slot.Replace(time.Minute, func() {})
	h.Cancel()
	h.Cancel()
	slot.Cancel()
	slot.Cancel()

	assert.Empty(t, clock.active())
	_, ok := slot.Pending()
	assert.False(t, ok)
}

func TestSlot_FiringClearsPending(t *testing.T) {
	clock := &FakeClock{now: time.Now()}
	slot := NewSlot(clock)

	fired := false
	slot.Replace(0, func() { fired = true })
	clock.active()[0].f()

	assert.True(t, fired)
	_, ok := slot.Pending()
	assert.False(t, ok)
}

func TestSlot_CloseRefusesScheduling(t *testing.T) {
	clock := &FakeClock{now: time.Now()}
	slot := NewSlot(clock)
	slot.Replace(time.Minute, func() {})

	slot.Close()

	assert.Nil(t, slot.Replace(time.Minute, func() {}))
	assert.Empty(t, clock.active())
}

func TestSlot_CanceledCallbackDoesNotRun(t *testing.T) {
	clock := &FakeClock{now: time.Now()}
	slot := NewSlot(clock)

	fired := 0
	slot.Replace(time.Minute, func() { fired++ })
	expired := clock.timers[0]

	// the timer goroutine may already be running when Cancel happens
	slot.Cancel()
	expired.f()
	assert.Equal(t, 0, fired)

	slot.Replace(time.Minute, func() { fired++ })
	stale := clock.timers[1]
	slot.Replace(time.Minute, func() { fired++ })
	stale.f()
	assert.Equal(t, 0, fired)

	clock.timers[2].f()
	assert.Equal(t, 1, fired)
}
