package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kareem2099/FreeID/domains/analytics"
	"github.com/kareem2099/FreeID/domains/bot"
	"github.com/kareem2099/FreeID/usecase"
)

const adminID = int64(1000)

type sentMessage struct {
	ChatID int64
	Text   string
	Opts   bot.ReplyOptions
}

type answeredCallback struct {
	ID        string
	Text      string
	ShowAlert bool
}

type fakeReplier struct {
	sends   []sentMessage
	answers []answeredCallback

	sendErr   error // returned by the first SendMessage call only
	panicNext bool  // panic on the next SendMessage call
}

func (f *fakeReplier) SendMessage(ctx context.Context, chatID int64, text string, opts bot.ReplyOptions) error {
	if f.panicNext {
		f.panicNext = false
		panic("replier blew up")
	}
	if err := f.sendErr; err != nil {
		f.sendErr = nil
		return err
	}
	f.sends = append(f.sends, sentMessage{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

func (f *fakeReplier) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	f.answers = append(f.answers, answeredCallback{ID: callbackID, Text: text, ShowAlert: showAlert})
	return nil
}

func recordingRepo() *MockRepo {
	repo := new(MockRepo)
	repo.On("RecordInteraction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return repo
}

func statsRepo(users, today, week, interactions int64) *MockRepo {
	repo := recordingRepo()
	repo.On("CountUsers", mock.Anything).Return(users, nil)
	repo.On("TodayActiveCount", mock.Anything, mock.Anything).Return(today, nil)
	repo.On("CountActiveSince", mock.Anything, mock.Anything).Return(week, nil)
	repo.On("TotalInteractions", mock.Anything).Return(interactions, nil)
	return repo
}

func newBotService(repo *MockRepo, replier bot.Replier) *usecase.BotService {
	return usecase.NewBotService(usecase.NewAnalyticsService(repo, nil), replier, adminID)
}

func textEvent(cmd, text string, from bot.User) bot.Event {
	return bot.Event{Text: &bot.TextCommand{
		ChatID:    from.ID,
		MessageID: 7,
		Command:   cmd,
		Text:      text,
		From:      from,
	}}
}

func TestStartRepliesProfileCard(t *testing.T) {
	repo := recordingRepo()
	replier := &fakeReplier{}
	svc := newBotService(repo, replier)

	user := bot.User{ID: 42, FirstName: "Alice", Username: "alice"}
	svc.HandleEvent(context.Background(), textEvent("/start", "/start", user))

	require.Len(t, replier.sends, 1)
	sent := replier.sends[0]
	assert.Equal(t, "HTML", sent.Opts.ParseMode)
	assert.Contains(t, sent.Text, "<code>42</code>")
	assert.Contains(t, sent.Text, "@alice")
	require.Len(t, sent.Opts.Keyboard, 2)
	assert.Equal(t, "myid", sent.Opts.Keyboard[0][0].CallbackData)
	assert.Equal(t, "publicstats", sent.Opts.Keyboard[1][0].CallbackData)
	repo.AssertCalled(t, "RecordInteraction", mock.Anything, int64(42), "alice", "Alice")
}

func TestMyIDReply(t *testing.T) {
	replier := &fakeReplier{}
	svc := newBotService(recordingRepo(), replier)

	svc.HandleEvent(context.Background(), textEvent("/myid", "/myid", bot.User{ID: 42}))

	require.Len(t, replier.sends, 1)
	assert.Equal(t, "Your User ID: `42`", replier.sends[0].Text)
	assert.Equal(t, "Markdown", replier.sends[0].Opts.ParseMode)
}

func TestUsernameNotSet(t *testing.T) {
	replier := &fakeReplier{}
	svc := newBotService(recordingRepo(), replier)

	svc.HandleEvent(context.Background(), textEvent("/username", "/username", bot.User{ID: 42}))

	require.Len(t, replier.sends, 1)
	assert.Equal(t, "Your Username: No username set", replier.sends[0].Text)
}

func TestUnknownTextGetsUsageHint(t *testing.T) {
	repo := recordingRepo()
	replier := &fakeReplier{}
	svc := newBotService(repo, replier)

	svc.HandleEvent(context.Background(), textEvent("", "hello there", bot.User{ID: 42}))

	require.Len(t, replier.sends, 1)
	assert.Contains(t, replier.sends[0].Text, "Use /start")
	repo.AssertCalled(t, "RecordInteraction", mock.Anything, int64(42), "", "")
}

func TestCallbackMyID(t *testing.T) {
	replier := &fakeReplier{}
	svc := newBotService(recordingRepo(), replier)

	svc.HandleEvent(context.Background(), bot.Event{Callback: &bot.Callback{
		ID: "cb1", Data: "myid", From: bot.User{ID: 42},
	}})

	require.Len(t, replier.answers, 1)
	assert.Equal(t, "Your User ID: 42", replier.answers[0].Text)
	assert.True(t, replier.answers[0].ShowAlert)
}

func TestCallbackPublicStats(t *testing.T) {
	repo := statsRepo(3, 2, 3, 16)
	replier := &fakeReplier{}
	svc := newBotService(repo, replier)

	svc.HandleEvent(context.Background(), bot.Event{Callback: &bot.Callback{
		ID: "cb2", Data: "publicstats", From: bot.User{ID: 42},
	}})

	require.Len(t, replier.answers, 1)
	assert.Contains(t, replier.answers[0].Text, "Total Users: 3")
	assert.Contains(t, replier.answers[0].Text, "Total Interactions: 16")
}

func TestPublicStatsCommand(t *testing.T) {
	repo := statsRepo(3, 2, 3, 16)
	replier := &fakeReplier{}
	svc := newBotService(repo, replier)

	svc.HandleEvent(context.Background(), textEvent("/publicstats", "/publicstats", bot.User{ID: 42}))

	require.Len(t, replier.sends, 1)
	sent := replier.sends[0]
	assert.Equal(t, "Markdown", sent.Opts.ParseMode)
	assert.Contains(t, sent.Text, "*Total Users:* 3")
	assert.Contains(t, sent.Text, "Last updated:")
	// avg is admin-only detail
	assert.NotContains(t, sent.Text, "Avg Interactions")
}

func TestStatsNonAdminGetsNoticeAndNoQueries(t *testing.T) {
	repo := recordingRepo()
	replier := &fakeReplier{}
	svc := newBotService(repo, replier)

	svc.HandleEvent(context.Background(), textEvent("/stats", "/stats", bot.User{ID: 42}))

	require.Len(t, replier.sends, 1)
	assert.Equal(t, "This is admin-only. Use /publicstats for public statistics.", replier.sends[0].Text)
	repo.AssertNotCalled(t, "CountUsers", mock.Anything)
	repo.AssertNotCalled(t, "TopUsers", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "RecordInteraction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStatsAdminGetsFullBreakdown(t *testing.T) {
	repo := statsRepo(3, 2, 3, 16)
	repo.On("TopUsers", mock.Anything, int64(5)).Return([]analytics.TopUser{
		{UserID: 1, FirstName: "Alice", Username: "alice", InteractionCount: 10},
		{UserID: 2, FirstName: "Bob", InteractionCount: 5},
		{UserID: 3, FirstName: "Carol", Username: "carol", InteractionCount: 1},
	}, nil)
	replier := &fakeReplier{}
	svc := newBotService(repo, replier)

	svc.HandleEvent(context.Background(), textEvent("/stats", "/stats", bot.User{ID: adminID}))

	require.Len(t, replier.sends, 1)
	text := replier.sends[0].Text
	assert.Contains(t, text, "*Avg Interactions/User:* 5.3")
	assert.Contains(t, text, "1. Alice (@alice) - 10 interactions")
	assert.Contains(t, text, "2. Bob (@No username) - 5 interactions")
	assert.Contains(t, text, "3. Carol (@carol) - 1 interactions")
	repo.AssertCalled(t, "RecordInteraction", mock.Anything, adminID, mock.Anything, mock.Anything)
}

func TestHandlerErrorBecomesApology(t *testing.T) {
	replier := &fakeReplier{sendErr: errors.New("telegram is down")}
	svc := newBotService(recordingRepo(), replier)

	svc.HandleEvent(context.Background(), textEvent("/myid", "/myid", bot.User{ID: 42}))

	require.Len(t, replier.sends, 1)
	assert.Equal(t, "Sorry, an error occurred while processing your request.", replier.sends[0].Text)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	replier := &fakeReplier{panicNext: true}
	svc := newBotService(recordingRepo(), replier)

	assert.NotPanics(t, func() {
		svc.HandleEvent(context.Background(), textEvent("/myid", "/myid", bot.User{ID: 42}))
	})
	require.Len(t, replier.sends, 1)
	assert.Equal(t, "Sorry, an error occurred while processing your request.", replier.sends[0].Text)
}
