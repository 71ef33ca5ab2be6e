package automation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shortsforge/automation-engine/internal/media"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/youtube"
	"github.com/sirupsen/logrus"
)

const (
	placeholderDescription = "AI is generating content..."
	// PlaceholderThumbnail is shown until the first scene image exists
	PlaceholderThumbnail = "https://via.placeholder.com/320x180/1e293b/94a3b8?text=Generating..."
)

type run struct {
	id        string
	topic     string
	token     string
	automated bool
}

// GenerateAndAddVideo runs one pipeline to completion. It returns false
// without doing anything when a run is already in flight, the channel is
// not connected, or an automated run finds automation disabled.
func (h *Hook) GenerateAndAddVideo(ctx context.Context, automated bool) bool {
	r, ok := h.begin(automated)
	if !ok {
		return false
	}
	h.execute(ctx, r)
	return true
}

// StartGeneration claims the pipeline and runs it in the background
func (h *Hook) StartGeneration(automated bool) bool {
	r, ok := h.begin(automated)
	if !ok {
		return false
	}
	if !h.goTracked(func() { h.execute(h.ctx, r) }) {
		h.fail(r, ErrClosed)
		return false
	}
	return true
}

// begin claims the single pipeline slot and inserts the placeholder video
func (h *Hook) begin(automated bool) (run, bool) {
	r := run{id: "vid_" + uuid.NewString(), automated: automated}

	next, ok := h.tryUpdate(func(s *models.AppState) bool {
		if h.closed || !s.CanGenerate() {
			return false
		}
		// automation may have been switched off after the timer fired
		if automated && !s.IsAutomated {
			return false
		}
		r.topic = s.VideoTopic
		r.token = s.YouTube.AccessToken

		placeholder := models.Video{
			ID:          r.id,
			Title:       "Generating: " + s.VideoTopic,
			Script:      []string{},
			Description: placeholderDescription,
			Tags:        []string{},
			Thumbnail:   PlaceholderThumbnail,
			UploadDate:  h.clock.Now(),
			Status:      models.StatusProcessing,
		}
		s.IsGenerating = true
		s.Videos = append([]models.Video{placeholder}, s.Videos...)
		return true
	})
	if !ok {
		logrus.Debug("Generation request ignored: busy or not connected")
		return r, false
	}

	h.publish(next.Videos[0], automated)
	logrus.Infof("Started pipeline %s on topic %q", r.id, r.topic)
	return r, true
}

func (h *Hook) execute(ctx context.Context, r run) {
	started := h.clock.Now()

	video, err := h.pipeline(ctx, r)
	if err != nil {
		logrus.Errorf("Video generation failed: %v", err)
		video = h.fail(r, err)
	}

	h.mu.Lock()
	if r.automated {
		if err != nil {
			at := h.clock.Now()
			h.lastFailure = &at
		} else {
			h.lastFailure = nil
		}
	}
	h.mu.Unlock()

	if h.recorder != nil {
		finished := h.clock.Now()
		report := &models.RunReport{
			VideoID:    video.ID,
			Title:      video.Title,
			Topic:      r.topic,
			Automated:  r.automated,
			Status:     video.Status,
			StartedAt:  started,
			FinishedAt: finished,
			Duration:   finished.Sub(started),
		}
		if err != nil {
			report.Error = err.Error()
		}
		h.recorder.RecordRun(report)
	}

	if err == nil {
		// best-effort: the video is already Uploaded whatever happens here
		_ = h.RefreshStats(ctx)
	}
}

func (h *Hook) pipeline(ctx context.Context, r run) (models.Video, error) {
	content, err := h.ai.GenerateVideoContent(ctx, r.topic)
	if err != nil {
		return models.Video{}, err
	}

	h.updateVideo(r, models.StatusProcessing, func(v *models.Video) {
		v.Title = content.Title
		v.Script = append([]string(nil), content.Script...)
		v.Description = content.Description
		v.Tags = append([]string(nil), content.Tags...)
		v.UploadDate = h.clock.Now()
	})

	images, err := h.ai.GenerateImages(ctx, content.ImagePrompts)
	if err != nil {
		return models.Video{}, err
	}

	h.updateVideo(r, models.StatusGenerated, func(v *models.Video) {
		if len(images) > 0 {
			v.Thumbnail = "data:image/png;base64," + base64.StdEncoding.EncodeToString(images[0])
		}
	})

	blob, err := h.renderer.Render(ctx, content.Title, content.Script, images)
	if err != nil {
		return models.Video{}, err
	}

	h.updateVideo(r, models.StatusUploading, nil)
	h.archiveRender(r.id, blob)

	youtubeID, err := h.youtube.UploadVideo(ctx, r.token, youtube.VideoMetadata{
		Title:       content.Title,
		Description: content.Description,
		Tags:        content.Tags,
	}, youtube.Media{Data: blob.Data, MIMEType: blob.MIMEType})
	if err != nil {
		return models.Video{}, err
	}

	now := h.clock.Now()
	var uploaded models.Video
	h.update(func(s *models.AppState) {
		s.IsGenerating = false
		if r.automated {
			s.LastAutomationTimestamp = &now
		}
		i := s.FindVideo(r.id)
		if i < 0 {
			return
		}
		v := &s.Videos[i]
		v.ID = youtubeID
		v.YouTubeVideoID = youtubeID
		v.Thumbnail = youtube.ThumbnailURL(youtubeID)
		v.Status = models.StatusUploaded
		uploaded = v.Clone()
	})
	if uploaded.ID == "" {
		uploaded = models.Video{ID: youtubeID, YouTubeVideoID: youtubeID, Title: content.Title, Status: models.StatusUploaded}
	}

	h.publish(uploaded, r.automated)
	logrus.Infof("Uploaded %q as %s", content.Title, youtubeID)
	return uploaded, nil
}

// updateVideo moves the run's video to status and applies fn to it
func (h *Hook) updateVideo(r run, status models.VideoStatus, fn func(v *models.Video)) {
	var changed models.Video
	h.update(func(s *models.AppState) {
		i := s.FindVideo(r.id)
		if i < 0 {
			return
		}
		v := &s.Videos[i]
		if !v.Status.CanTransitionTo(status) {
			logrus.Warnf("Ignoring %s -> %s for %s", v.Status, status, r.id)
			return
		}
		if fn != nil {
			fn(v)
		}
		v.Status = status
		changed = v.Clone()
	})

	if changed.ID != "" {
		h.publish(changed, r.automated)
	}
}

// fail marks the run's video Failed with the error as its description and
// releases the pipeline
func (h *Hook) fail(r run, err error) models.Video {
	failed := models.Video{ID: r.id, Status: models.StatusFailed, Description: err.Error()}
	h.update(func(s *models.AppState) {
		s.IsGenerating = false
		i := s.FindVideo(r.id)
		if i < 0 || !s.Videos[i].Status.CanTransitionTo(models.StatusFailed) {
			return
		}
		s.Videos[i].Status = models.StatusFailed
		s.Videos[i].Description = err.Error()
		failed = s.Videos[i].Clone()
	})

	h.publish(failed, r.automated)
	return failed
}

func (h *Hook) archiveRender(id string, blob *media.Blob) {
	if h.archive == nil {
		return
	}

	ext := "webm"
	if _, sub, ok := strings.Cut(media.BaseMIMEType(blob.MIMEType), "/"); ok && sub != "" {
		ext = sub
	}

	name := fmt.Sprintf("renders/%s.%s", id, ext)
	if err := h.archive.Store(name, blob.Data); err != nil {
		logrus.Warnf("Could not archive render %s: %v", name, err)
		return
	}
	logrus.Debugf("Archived render %s (%d bytes)", name, len(blob.Data))
}
