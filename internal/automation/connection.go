package automation

import (
	"context"
	"errors"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/stats"
	"github.com/sirupsen/logrus"
)

const (
	// ConnectFailedMessage is shown when the channel could not be reached with a fresh token
	ConnectFailedMessage = "Could not connect to YouTube. Please try again."
	// LoginFailedMessage is shown when the sign-in step itself failed
	LoginFailedMessage = "Failed to connect to Google."

	statsLabelLayout = "15:04:05"
)

// ErrNotConnected is returned by operations that need a connected channel
var ErrNotConnected = errors.New("YouTube is not connected")

// ConnectSuccess stores token, verifies it by fetching the channel profile
// and reconciles stats. Any failure disconnects fully.
func (h *Hook) ConnectSuccess(ctx context.Context, token string) error {
	h.update(func(s *models.AppState) {
		s.IsConnecting = true
		s.YouTube = models.DisconnectedYouTube()
		s.YouTube.AccessToken = token
	})

	profile, err := h.youtube.FetchProfile(ctx, token)
	if err != nil {
		logrus.Errorf("Could not connect to YouTube: %v", err)
		h.Disconnect()
		h.update(func(s *models.AppState) {
			s.IsConnecting = false
			s.YouTube.Error = ConnectFailedMessage
		})
		return err
	}

	h.update(func(s *models.AppState) {
		s.IsConnecting = false
		s.YouTube.Connected = true
		s.YouTube.ChannelName = profile.Name
		s.YouTube.ChannelAvatar = profile.Avatar
		s.YouTube.Error = ""
	})
	logrus.Infof("Connected to YouTube channel %q", profile.Name)

	_ = h.RefreshStats(ctx)
	h.scheduleNext()
	return nil
}

// ConnectError records a failed sign-in
func (h *Hook) ConnectError(cause string) {
	logrus.Errorf("Google login error: %s", cause)
	h.update(func(s *models.AppState) {
		s.IsConnecting = false
		s.YouTube = models.DisconnectedYouTube()
		s.YouTube.Error = LoginFailedMessage
	})
}

// Disconnect cancels the automation timer and resets the connection in a
// single update. Video records survive with zeroed counters.
func (h *Hook) Disconnect() {
	h.slot.Cancel()

	h.update(func(s *models.AppState) {
		s.IsAutomated = false
		s.LastAutomationTimestamp = nil
		s.YouTube = models.DisconnectedYouTube()
		s.StatsHistory = []models.StatsSnapshot{}
		for i := range s.Videos {
			s.Videos[i].Views = 0
			s.Videos[i].Likes = 0
			s.Videos[i].Comments = 0
		}
	})
	logrus.Info("Disconnected from YouTube")
}

// SetAccessToken swaps in a refreshed token for the connected channel
func (h *Hook) SetAccessToken(token string) bool {
	_, ok := h.tryUpdate(func(s *models.AppState) bool {
		if !s.YouTube.Connected || token == "" || s.YouTube.AccessToken == token {
			return false
		}
		s.YouTube.AccessToken = token
		return true
	})
	return ok
}

// RefreshStats reconciles channel statistics. Callers treat it as
// best-effort: a failed page discards the whole refresh and nothing is
// appended to the history.
func (h *Hook) RefreshStats(ctx context.Context) error {
	state := h.Snapshot()
	token := state.YouTube.AccessToken
	if token == "" {
		return ErrNotConnected
	}

	result, err := h.stats.Collect(ctx, token)
	if h.recorder != nil {
		h.recorder.RecordStatsRefresh(err)
	}
	if err != nil {
		logrus.Errorf("Error fetching YouTube stats: %v", err)
		return err
	}
	if result == nil {
		return nil
	}

	label := h.clock.Now().Format(statsLabelLayout)
	h.tryUpdate(func(s *models.AppState) bool {
		// a disconnect or reconnect happened meanwhile
		if s.YouTube.AccessToken != token {
			return false
		}
		*s = stats.Apply(*s, result, label)
		return true
	})

	logrus.Debugf("Reconciled stats: %d videos, %d views", result.VideoCount, result.TotalViews)
	return nil
}
