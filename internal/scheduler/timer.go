package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock abstracts time so timers can be driven manually in tests
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Stopper cancels a pending timer
type Stopper interface {
	Stop() bool
}

type realClock struct{}

// RealClock returns a Clock backed by the time package
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// NextDelay returns how long to wait before the next automated run: the
// remainder of interval since last, floored at zero, or zero when there has
// been no run yet.
func NextDelay(interval time.Duration, last *time.Time, now time.Time) time.Duration {
	if last == nil {
		return 0
	}
	delay := interval - now.Sub(*last)
	if delay < 0 {
		return 0
	}
	return delay
}

// Handle is one scheduled callback. Cancel is idempotent.
type Handle struct {
	once     sync.Once
	stopper  Stopper
	canceled atomic.Bool
	At       time.Time
}

// Cancel stops the callback if it has not fired yet. A callback whose timer
// already expired but has not run yet is dropped as well.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.canceled.Store(true)
		if h.stopper != nil {
			h.stopper.Stop()
		}
	})
}

// Slot holds at most one pending timer. Scheduling replaces the previous
// timer instead of stacking another one.
type Slot struct {
	clock   Clock
	mu      sync.Mutex
	current *Handle
	closed  bool
}

// NewSlot creates an empty slot
func NewSlot(clock Clock) *Slot {
	if clock == nil {
		clock = RealClock()
	}
	return &Slot{clock: clock}
}

// Replace cancels any pending timer and schedules f after delay. It returns
// nil once the slot is closed.
func (s *Slot) Replace(delay time.Duration, f func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.current.Cancel()

	h := &Handle{At: s.clock.Now().Add(delay)}
	h.stopper = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.current != h || h.canceled.Load() {
			s.mu.Unlock()
			return
		}
		s.current = nil
		s.mu.Unlock()
		f()
	})
	s.current = h
	return h
}

// Cancel stops the pending timer, if any
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Cancel()
	s.current = nil
}

// Pending returns the time of the pending run, if any
func (s *Slot) Pending() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return time.Time{}, false
	}
	return s.current.At, true
}

// Close cancels the pending timer and refuses further scheduling
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Cancel()
	s.current = nil
	s.closed = true
}
