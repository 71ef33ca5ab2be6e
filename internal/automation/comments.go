package automation

import (
	"context"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// SelectVideo makes the video with the given local id the selection and
// clears any comment error. An empty id clears the selection.
func (h *Hook) SelectVideo(id string) bool {
	_, ok := h.tryUpdate(func(s *models.AppState) bool {
		s.CommentError = ""
		if id == "" {
			s.SelectedVideo = nil
			return true
		}
		i := s.FindVideo(id)
		if i < 0 {
			return false
		}
		selected := s.Videos[i].Clone()
		s.SelectedVideo = &selected
		return true
	})
	return ok
}

// FetchComments loads the top comment threads of an uploaded video into the
// video collection and the selection
func (h *Hook) FetchComments(ctx context.Context, youtubeVideoID string) error {
	state := h.Snapshot()
	if !state.YouTube.Connected || state.YouTube.AccessToken == "" {
		return ErrNotConnected
	}

	h.update(func(s *models.AppState) {
		s.IsFetchingComments = true
		s.CommentError = ""
	})

	comments, err := h.youtube.ListComments(ctx, state.YouTube.AccessToken, youtubeVideoID)
	if err != nil {
		logrus.Errorf("Error fetching comments: %v", err)
		h.update(func(s *models.AppState) {
			s.IsFetchingComments = false
			s.CommentError = err.Error()
		})
		return err
	}

	h.update(func(s *models.AppState) {
		s.IsFetchingComments = false
		for i := range s.Videos {
			if s.Videos[i].YouTubeVideoID == youtubeVideoID {
				s.Videos[i].CommentThreads = cloneComments(comments)
			}
		}
		if s.SelectedVideo != nil && s.SelectedVideo.YouTubeVideoID == youtubeVideoID {
			s.SelectedVideo.CommentThreads = cloneComments(comments)
		}
	})

	logrus.Infof("Fetched %d comments for %s", len(comments), youtubeVideoID)
	return nil
}

// GenerateReplySuggestion attaches an AI sentiment and suggested reply to a
// comment of the selected video. Only one comment is worked on at a time;
// requests made meanwhile are ignored.
func (h *Hook) GenerateReplySuggestion(ctx context.Context, commentID, text string) error {
	if !h.beginReply(commentID) {
		return nil
	}

	analysis, err := h.ai.AnalyzeComment(ctx, text)
	if err != nil {
		logrus.Errorf("Error generating reply: %v", err)
		h.endReply(err)
		return err
	}

	if h.recorder != nil {
		h.recorder.RecordSentiment(analysis.Sentiment)
	}

	h.update(func(s *models.AppState) {
		s.IsReplying = ""
		updateSelectedComment(s, commentID, func(c *models.Comment) {
			a := *analysis
			c.AIAnalysis = &a
		})
	})
	return nil
}

// PostReply publishes a reply under a comment of the selected video and
// marks that comment as answered
func (h *Hook) PostReply(ctx context.Context, parentID, text string) error {
	state := h.Snapshot()
	if !state.YouTube.Connected || state.YouTube.AccessToken == "" {
		return ErrNotConnected
	}
	if state.SelectedVideo == nil {
		return nil
	}
	if !h.beginReply(parentID) {
		return nil
	}

	if err := h.youtube.PostReply(ctx, state.YouTube.AccessToken, parentID, text); err != nil {
		logrus.Errorf("Error posting reply: %v", err)
		h.endReply(err)
		return err
	}

	h.update(func(s *models.AppState) {
		s.IsReplying = ""
		updateSelectedComment(s, parentID, func(c *models.Comment) {
			c.ReplyPosted = true
		})
	})
	logrus.Infof("Posted reply to comment %s", parentID)
	return nil
}

func (h *Hook) beginReply(commentID string) bool {
	_, ok := h.tryUpdate(func(s *models.AppState) bool {
		if s.IsReplying != "" {
			return false
		}
		s.IsReplying = commentID
		s.CommentError = ""
		return true
	})
	return ok
}

func (h *Hook) endReply(err error) {
	h.update(func(s *models.AppState) {
		s.IsReplying = ""
		s.CommentError = err.Error()
	})
}

// updateSelectedComment applies fn to one comment of the selected video and
// writes the selection back into the video collection
func updateSelectedComment(s *models.AppState, commentID string, fn func(c *models.Comment)) {
	if s.SelectedVideo == nil {
		return
	}

	for i := range s.SelectedVideo.CommentThreads {
		if s.SelectedVideo.CommentThreads[i].ID == commentID {
			fn(&s.SelectedVideo.CommentThreads[i])
		}
	}

	if i := s.FindVideo(s.SelectedVideo.ID); i >= 0 {
		s.Videos[i] = s.SelectedVideo.Clone()
	}
}

func cloneComments(comments []models.Comment) []models.Comment {
	out := make([]models.Comment, len(comments))
	for i, c := range comments {
		out[i] = c.Clone()
	}
	return out
}
