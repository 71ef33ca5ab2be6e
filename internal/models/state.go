package models

import "time"

// DefaultTopic is used for new installations
const DefaultTopic = "surprising historical facts"

// MaxStatsHistory bounds the number of retained stats snapshots
const MaxStatsHistory = 10

// YouTubeState is the connection to the creator's channel.
// Connected implies a non-empty AccessToken.
type YouTubeState struct {
	Connected     bool   `json:"connected"`
	ChannelName   string `json:"channelName,omitempty"`
	ChannelAvatar string `json:"channelAvatar,omitempty"`
	VideoCount    int64  `json:"videoCount"`
	AccessToken   string `json:"accessToken,omitempty"`
	Error         string `json:"error,omitempty"`
}

// DisconnectedYouTube returns the default, disconnected channel state
func DisconnectedYouTube() YouTubeState {
	return YouTubeState{}
}

// AppState is the full engine state. Fields tagged transient are reset on
// load and never persisted.
type AppState struct {
	Videos                  []Video         `json:"videos"`
	StatsHistory            []StatsSnapshot `json:"statsHistory"`
	IsAutomated             bool            `json:"isAutomated"`
	LastAutomationTimestamp *time.Time      `json:"lastAutomationTimestamp"`
	YouTube                 YouTubeState    `json:"youtube"`
	VideoTopic              string          `json:"videoTopic"`
	StrategyNiche           string          `json:"strategyNiche"`
	StrategyIdeas           []StrategyIdea  `json:"strategyIdeas"`

	// transient
	SelectedVideo        *Video `json:"selectedVideo,omitempty"`
	IsGenerating         bool   `json:"isGenerating,omitempty"`
	IsConnecting         bool   `json:"isConnecting,omitempty"`
	IsFetchingComments   bool   `json:"isFetchingComments,omitempty"`
	IsReplying           string `json:"isReplying,omitempty"`
	CommentError         string `json:"commentError,omitempty"`
	IsGeneratingStrategy bool   `json:"isGeneratingStrategy,omitempty"`
}

// DefaultState returns the state of a fresh installation
func DefaultState() AppState {
	return AppState{
		Videos:        []Video{},
		StatsHistory:  []StatsSnapshot{},
		YouTube:       DisconnectedYouTube(),
		VideoTopic:    DefaultTopic,
		StrategyNiche: DefaultTopic,
		StrategyIdeas: []StrategyIdea{},
	}
}

// WithoutTransient returns a copy with every transient field reset
func (s AppState) WithoutTransient() AppState {
	s.SelectedVideo = nil
	s.IsGenerating = false
	s.IsConnecting = false
	s.IsFetchingComments = false
	s.IsReplying = ""
	s.CommentError = ""
	s.IsGeneratingStrategy = false
	return s
}

// Clone returns a deep copy so callers can build the next state without
// touching the current one.
func (s AppState) Clone() AppState {
	if s.Videos != nil {
		videos := make([]Video, len(s.Videos))
		for i, v := range s.Videos {
			videos[i] = v.Clone()
		}
		s.Videos = videos
	}
	if s.StatsHistory != nil {
		history := make([]StatsSnapshot, len(s.StatsHistory))
		copy(history, s.StatsHistory)
		s.StatsHistory = history
	}
	if s.StrategyIdeas != nil {
		ideas := make([]StrategyIdea, len(s.StrategyIdeas))
		copy(ideas, s.StrategyIdeas)
		s.StrategyIdeas = ideas
	}
	if s.LastAutomationTimestamp != nil {
		ts := *s.LastAutomationTimestamp
		s.LastAutomationTimestamp = &ts
	}
	if s.SelectedVideo != nil {
		selected := s.SelectedVideo.Clone()
		s.SelectedVideo = &selected
	}
	return s
}

// CanGenerate reports whether a new pipeline run may start
func (s AppState) CanGenerate() bool {
	return !s.IsGenerating && s.YouTube.Connected && s.YouTube.AccessToken != ""
}

// FindVideo returns the index of the video with the given local id, or -1
func (s AppState) FindVideo(id string) int {
	for i := range s.Videos {
		if s.Videos[i].ID == id {
			return i
		}
	}
	return -1
}
