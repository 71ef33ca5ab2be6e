package stats

import (
	"context"
	"fmt"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/shortsforge/automation-engine/internal/youtube"
	"github.com/sirupsen/logrus"
)

// ChannelReader is the part of the YouTube API the aggregator needs
type ChannelReader interface {
	ChannelDetails(ctx context.Context, token string) (*youtube.ChannelDetails, error)
	PlaylistVideoIDs(ctx context.Context, token, playlistID, pageToken string, maxResults int) ([]string, string, error)
	VideoStatistics(ctx context.Context, token string, ids []string) (map[string]models.VideoStats, error)
}

// Result is one complete reconciliation of channel statistics
type Result struct {
	VideoCount    int64
	TotalViews    int64
	TotalLikes    int64
	TotalComments int64
	PerVideo      map[string]models.VideoStats
}

// Aggregator collects channel-wide and per-video statistics
type Aggregator struct {
	reader    ChannelReader
	batchSize int
}

// NewAggregator creates an aggregator that requests at most
// youtube.MaxResultsPerPage items per call.
func NewAggregator(reader ChannelReader) *Aggregator {
	return &Aggregator{reader: reader, batchSize: youtube.MaxResultsPerPage}
}

// Collect pages through the uploads playlist and fetches statistics in
// batches. It returns (nil, nil) when the account has no channel. Any failed
// call aborts the whole collection; partial results are never returned.
func (a *Aggregator) Collect(ctx context.Context, token string) (*Result, error) {
	details, err := a.reader.ChannelDetails(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel details: %w", err)
	}
	if details == nil {
		logrus.Warn("No YouTube channel found for the connected account")
		return nil, nil
	}

	ids, err := a.uploadedVideoIDs(ctx, token, details.UploadsPlaylistID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		VideoCount:    details.VideoCount,
		TotalComments: details.CommentCount,
		PerVideo:      make(map[string]models.VideoStats, len(ids)),
	}

	for _, batch := range Batches(ids, a.batchSize) {
		stats, err := a.reader.VideoStatistics(ctx, token, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch video statistics: %w", err)
		}
		for id, s := range stats {
			result.PerVideo[id] = s
			result.TotalViews += s.Views
			result.TotalLikes += s.Likes
		}
	}

	logrus.Infof("Collected stats for %d videos (%d views, %d likes)", len(result.PerVideo), result.TotalViews, result.TotalLikes)
	return result, nil
}

func (a *Aggregator) uploadedVideoIDs(ctx context.Context, token, playlistID string) ([]string, error) {
	if playlistID == "" {
		return nil, nil
	}

	var ids []string
	pageToken := ""
	for {
		page, next, err := a.reader.PlaylistVideoIDs(ctx, token, playlistID, pageToken, a.batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list uploads: %w", err)
		}
		ids = append(ids, page...)
		if next == "" {
			return ids, nil
		}
		pageToken = next
	}
}

// Batches splits ids into consecutive groups of at most size
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = youtube.MaxResultsPerPage
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

// Apply folds a result into state: per-video counters are replaced for
// matching uploads, a snapshot is appended (keeping the newest
// models.MaxStatsHistory) and the channel video count is updated.
func Apply(state models.AppState, result *Result, label string) models.AppState {
	if result == nil {
		return state
	}

	next := state.Clone()
	for i := range next.Videos {
		v := &next.Videos[i]
		if v.YouTubeVideoID == "" {
			continue
		}
		if s, ok := result.PerVideo[v.YouTubeVideoID]; ok {
			v.Views = s.Views
			v.Likes = s.Likes
			v.Comments = s.Comments
		}
	}

	next.StatsHistory = append(next.StatsHistory, models.StatsSnapshot{
		Name:     label,
		Videos:   result.VideoCount,
		Views:    result.TotalViews,
		Likes:    result.TotalLikes,
		Comments: result.TotalComments,
	})
	if len(next.StatsHistory) > models.MaxStatsHistory {
		next.StatsHistory = next.StatsHistory[len(next.StatsHistory)-models.MaxStatsHistory:]
	}

	next.YouTube.VideoCount = result.VideoCount
	return next
}
