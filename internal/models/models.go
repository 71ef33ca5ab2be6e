package models

import "time"

// Video represents a short produced by the engine, from placeholder to upload
type Video struct {
	ID             string      `json:"id"`
	YouTubeVideoID string      `json:"youtubeVideoId,omitempty"`
	Title          string      `json:"title"`
	Script         []string    `json:"script"`
	Description    string      `json:"description"`
	Tags           []string    `json:"tags"`
	UploadDate     time.Time   `json:"uploadDate"`
	Views          int64       `json:"views"`
	Likes          int64       `json:"likes"`
	Comments       int64       `json:"comments"`
	Status         VideoStatus `json:"status"`
	Thumbnail      string      `json:"thumbnail"`
	CommentThreads []Comment   `json:"commentThreads,omitempty"`
}

// Clone returns a copy that shares no slices with v
func (v Video) Clone() Video {
	v.Script = cloneStrings(v.Script)
	v.Tags = cloneStrings(v.Tags)
	if v.CommentThreads != nil {
		threads := make([]Comment, len(v.CommentThreads))
		for i, c := range v.CommentThreads {
			threads[i] = c.Clone()
		}
		v.CommentThreads = threads
	}
	return v
}

// VideoStats holds the engagement counters reported by the platform
type VideoStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// CommentAuthor identifies who wrote a comment
type CommentAuthor struct {
	DisplayName     string `json:"displayName"`
	ProfileImageURL string `json:"profileImageUrl"`
	ChannelURL      string `json:"channelUrl"`
}

// AIAnalysis is the generated sentiment and reply suggestion for a comment
type AIAnalysis struct {
	Sentiment      Sentiment `json:"sentiment"`
	SuggestedReply string    `json:"suggestedReply"`
}

// Comment is a top-level comment on an uploaded video
type Comment struct {
	ID          string        `json:"id"`
	Text        string        `json:"text"`
	Author      CommentAuthor `json:"author"`
	PublishedAt string        `json:"publishedAt"`
	LikeCount   int64         `json:"likeCount"`
	AIAnalysis  *AIAnalysis   `json:"aiAnalysis,omitempty"`
	ReplyPosted bool          `json:"replyPosted,omitempty"`
}

// Clone returns a copy that shares no pointers with c
func (c Comment) Clone() Comment {
	if c.AIAnalysis != nil {
		analysis := *c.AIAnalysis
		c.AIAnalysis = &analysis
	}
	return c
}

// StatsSnapshot is one point in the channel statistics history
type StatsSnapshot struct {
	Name     string `json:"name"`
	Videos   int64  `json:"videos"`
	Views    int64  `json:"views"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
}

// StrategyIdea is one video idea from the content strategy planner
type StrategyIdea struct {
	Title   string `json:"title" validate:"required"`
	Concept string `json:"concept"`
	Reason  string `json:"reason"`
}

// VideoContent is the generated metadata and script for one short
type VideoContent struct {
	Title        string   `json:"title"`
	Script       []string `json:"script"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	ImagePrompts []string `json:"imagePrompts"`
}

// RunReport summarizes one pass of the generation pipeline
type RunReport struct {
	VideoID    string        `json:"video_id"`
	Title      string        `json:"title"`
	Topic      string        `json:"topic"`
	Automated  bool          `json:"automated"`
	Status     VideoStatus   `json:"status"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// Alert represents an urgent notification
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "critical", "warning", "info"
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoEvent is published whenever a video changes status
type VideoEvent struct {
	VideoID        string      `json:"video_id"`
	YouTubeVideoID string      `json:"youtube_video_id,omitempty"`
	Title          string      `json:"title"`
	Status         VideoStatus `json:"status"`
	Automated      bool        `json:"automated"`
	Error          string      `json:"error,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
