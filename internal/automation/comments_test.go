package automation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func stateWithComments() models.AppState {
	state := connectedState()
	state.Videos = []models.Video{{
		ID:             "yt1",
		YouTubeVideoID: "yt1",
		Title:          "T",
		Status:         models.StatusUploaded,
		CommentThreads: []models.Comment{
			{ID: "c1", Text: "How old was it?"},
			{ID: "c2", Text: "Love this", AIAnalysis: &models.AIAnalysis{Sentiment: models.SentimentPositive, SuggestedReply: "Thanks!"}},
		},
	}}
	return state
}

func TestSelectVideo(t *testing.T) {
	f := newFixture(t, stateWithComments())

	assert.True(t, f.hook.SelectVideo("yt1"))
	require.NotNil(t, f.hook.Snapshot().SelectedVideo)
	assert.Equal(t, "yt1", f.hook.Snapshot().SelectedVideo.ID)

	assert.False(t, f.hook.SelectVideo("missing"))
	assert.True(t, f.hook.SelectVideo(""))
	assert.Nil(t, f.hook.Snapshot().SelectedVideo)
}

func TestFetchComments(t *testing.T) {
	f := newFixture(t, stateWithComments())
	require.True(t, f.hook.SelectVideo("yt1"))
	fresh := []models.Comment{{ID: "c9", Text: "new"}}
	f.yt.On("ListComments", mock.Anything, "tok", "yt1").Return(fresh, nil)

	require.NoError(t, f.hook.FetchComments(context.Background(), "yt1"))

	state := f.hook.Snapshot()
	assert.False(t, state.IsFetchingComments)
	assert.Equal(t, fresh, state.Videos[0].CommentThreads)
	assert.Equal(t, fresh, state.SelectedVideo.CommentThreads)
}

func TestFetchComments_ErrorSurfaces(t *testing.T) {
	f := newFixture(t, stateWithComments())
	f.yt.On("ListComments", mock.Anything, "tok", "yt1").Return(nil, errors.New("Failed to fetch comments"))

	require.Error(t, f.hook.FetchComments(context.Background(), "yt1"))

	state := f.hook.Snapshot()
	assert.False(t, state.IsFetchingComments)
	assert.Equal(t, "Failed to fetch comments", state.CommentError)
	assert.Len(t, state.Videos[0].CommentThreads, 2)
}

func TestPostReply_MarksOnlyThatComment(t *testing.T) {
	f := newFixture(t, stateWithComments())
	require.True(t, f.hook.SelectVideo("yt1"))
	f.yt.On("PostReply", mock.Anything, "tok", "c1", "About 300 years!").Return(nil)

	require.NoError(t, f.hook.PostReply(context.Background(), "c1", "About 300 years!"))

	state := f.hook.Snapshot()
	comments := state.Videos[0].CommentThreads
	assert.True(t, comments[0].ReplyPosted)
	assert.False(t, comments[1].ReplyPosted)
	require.NotNil(t, comments[1].AIAnalysis)
	assert.Equal(t, models.SentimentPositive, comments[1].AIAnalysis.Sentiment)
	assert.Equal(t, "Thanks!", comments[1].AIAnalysis.SuggestedReply)
	assert.True(t, state.SelectedVideo.CommentThreads[0].ReplyPosted)
	assert.Empty(t, state.IsReplying)
}

func TestPostReply_ErrorSurfaces(t *testing.T) {
	f := newFixture(t, stateWithComments())
	require.True(t, f.hook.SelectVideo("yt1"))
	f.yt.On("PostReply", mock.Anything, "tok", "c1", "hi").Return(errors.New("Failed to post reply: forbidden"))

	require.Error(t, f.hook.PostReply(context.Background(), "c1", "hi"))

	state := f.hook.Snapshot()
	assert.Equal(t, "Failed to post reply: forbidden", state.CommentError)
	assert.Empty(t, state.IsReplying)
	assert.False(t, state.Videos[0].CommentThreads[0].ReplyPosted)
}

func TestGenerateReplySuggestion(t *testing.T) {
	f := newFixture(t, stateWithComments())
	require.True(t, f.hook.SelectVideo("yt1"))
	f.gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"sentiment":"Question","suggestedReply":"Around 300 BC!"}`, nil)

	require.NoError(t, f.hook.GenerateReplySuggestion(context.Background(), "c1", "How old was it?"))

	state := f.hook.Snapshot()
	require.NotNil(t, state.Videos[0].CommentThreads[0].AIAnalysis)
	assert.Equal(t, models.SentimentQuestion, state.Videos[0].CommentThreads[0].AIAnalysis.Sentiment)
	assert.Equal(t, "Thanks!", state.Videos[0].CommentThreads[1].AIAnalysis.SuggestedReply)
	assert.Empty(t, state.IsReplying)
}

func TestGenerateReplySuggestion_IgnoredWhileReplying(t *testing.T) {
	f := newFixture(t, stateWithComments())
	require.True(t, f.hook.SelectVideo("yt1"))
	entered := make(chan struct{})
	release := make(chan struct{})
	f.gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(`{"sentiment":"Spam","suggestedReply":"-"}`, nil).Once()

	done := make(chan error)
	go func() { done <- f.hook.GenerateReplySuggestion(context.Background(), "c1", "buy now") }()
	<-entered

	assert.Equal(t, "c1", f.hook.Snapshot().IsReplying)
	assert.NoError(t, f.hook.GenerateReplySuggestion(context.Background(), "c2", "Love this"))
	assert.NoError(t, f.hook.PostReply(context.Background(), "c2", "thanks"))

	close(release)
	require.NoError(t, <-done)
	f.gen.AssertNumberOfCalls(t, "GenerateJSON", 1)
	f.yt.AssertNotCalled(t, "PostReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateContentStrategy(t *testing.T) {
	f := newFixture(t, connectedState())
	f.hook.SetStrategyNiche("ancient engineering")
	f.gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "ancient engineering")
	}), mock.Anything).Return(`[{"title":"Roman concrete","concept":"c","reason":"r"}]`, nil)

	require.NoError(t, f.hook.GenerateContentStrategy(context.Background()))

	state := f.hook.Snapshot()
	assert.False(t, state.IsGeneratingStrategy)
	require.Len(t, state.StrategyIdeas, 1)

	f.hook.SelectStrategyIdea(state.StrategyIdeas[0])
	assert.Equal(t, "Roman concrete", f.hook.Snapshot().VideoTopic)
}

func TestGenerateContentStrategy_Failure(t *testing.T) {
	initial := connectedState()
	initial.StrategyIdeas = []models.StrategyIdea{{Title: "old"}}
	f := newFixture(t, initial)
	f.gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))

	require.Error(t, f.hook.GenerateContentStrategy(context.Background()))

	state := f.hook.Snapshot()
	assert.False(t, state.IsGeneratingStrategy)
	assert.Empty(t, state.StrategyIdeas)
}

func TestGenerateContentStrategy_DisconnectedIsNoop(t *testing.T) {
	f := newFixture(t, models.DefaultState())
	require.NoError(t, f.hook.GenerateContentStrategy(context.Background()))
	f.gen.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetVideoTopic_Persists(t *testing.T) {
	f := newFixture(t, models.DefaultState())
	f.hook.SetVideoTopic("deep sea creatures")
	assert.Equal(t, "deep sea creatures", f.store.last().VideoTopic)
}
