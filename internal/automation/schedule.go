package automation

import (
	"time"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/scheduler"
	"github.com/sirupsen/logrus"
)

// ToggleAutomation flips automated mode and returns the new setting. It is a
// no-op while disconnected.
func (h *Hook) ToggleAutomation() bool {
	next, ok := h.tryUpdate(func(s *models.AppState) bool {
		if !s.YouTube.Connected {
			return false
		}
		s.IsAutomated = !s.IsAutomated
		return true
	})
	if !ok {
		return next.IsAutomated
	}

	if next.IsAutomated {
		logrus.Info("Automation enabled")
	} else {
		logrus.Info("Automation disabled")
	}
	h.scheduleNext()
	return next.IsAutomated
}

// scheduleNext replaces the pending automated run based on the latest state.
// Disabled automation or a lost connection cancels it.
func (h *Hook) scheduleNext() {
	h.mu.Lock()
	state := h.state
	lastFailure := h.lastFailure
	h.mu.Unlock()

	if !state.IsAutomated || !state.YouTube.Connected {
		h.slot.Cancel()
		return
	}

	now := h.clock.Now()
	delay := scheduler.NextDelay(h.interval, state.LastAutomationTimestamp, now)
	if backoff := scheduler.NextDelay(h.failureBackoff, lastFailure, now); backoff > delay {
		delay = backoff
	}

	if handle := h.slot.Replace(delay, h.runAutomated); handle != nil {
		logrus.Infof("Next automated run in %v", delay.Round(time.Second))
	}
}

func (h *Hook) runAutomated() {
	h.mu.Lock()
	if h.closed || !h.state.IsAutomated {
		h.mu.Unlock()
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	if !h.GenerateAndAddVideo(h.ctx, true) {
		logrus.Info("Automated run skipped: another run is in flight or the channel is disconnected")
		h.mu.Lock()
		at := h.clock.Now()
		h.lastFailure = &at
		h.mu.Unlock()
	}

	h.scheduleNext()
}
