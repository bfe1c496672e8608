package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kareem2099/FreeID/domains/bot"
)

func TestParseCommand(t *testing.T) {
	assert.Equal(t, "/start", parseCommand("/start"))
	assert.Equal(t, "/start", parseCommand("/START"))
	assert.Equal(t, "/stats", parseCommand("/stats@FreeIDBot extra args"))
	assert.Equal(t, "", parseCommand("hello /start"))
	assert.Equal(t, "", parseCommand("plain text"))
}

func TestDecodeUpdateMessage(t *testing.T) {
	update := Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 5,
			From:      &bot.User{ID: 42, FirstName: "Alice", Username: "alice"},
			Chat:      &Chat{ID: 42, Type: "private"},
			Text:      "/myid",
		},
	}

	event, ok := decodeUpdate(update)
	require.True(t, ok)
	require.NotNil(t, event.Text)
	assert.Equal(t, "/myid", event.Text.Command)
	assert.Equal(t, int64(42), event.Text.ChatID)
	assert.Equal(t, int64(42), event.From().ID)
}

func TestDecodeUpdateCallback(t *testing.T) {
	update := Update{
		UpdateID: 2,
		CallbackQuery: &CallbackQuery{
			ID:   "cb9",
			From: &bot.User{ID: 42},
			Data: "publicstats",
			Message: &Message{
				Chat: &Chat{ID: 42},
			},
		},
	}

	event, ok := decodeUpdate(update)
	require.True(t, ok)
	require.NotNil(t, event.Callback)
	assert.Equal(t, "cb9", event.Callback.ID)
	assert.Equal(t, "publicstats", event.Callback.Data)
	assert.Equal(t, int64(42), event.Callback.ChatID)
}

func TestDecodeUpdateDropsIncomplete(t *testing.T) {
	_, ok := decodeUpdate(Update{UpdateID: 3})
	assert.False(t, ok)

	_, ok = decodeUpdate(Update{UpdateID: 4, Message: &Message{Text: "hi", Chat: &Chat{ID: 1}}})
	assert.False(t, ok) // no sender

	_, ok = decodeUpdate(Update{UpdateID: 5, Message: &Message{Chat: &Chat{ID: 1}, From: &bot.User{ID: 1}}})
	assert.False(t, ok) // no text
}

func TestSendMessageChunksLongText(t *testing.T) {
	var texts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/sendMessage"))
		var params struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		texts = append(texts, params.Text)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	b := NewBot("test-token")
	b.SetAPIBase(server.URL)

	line := strings.Repeat("z", 100)
	long := strings.Repeat(line+"\n", 89) + line // ~9000 chars

	err := b.SendMessage(context.Background(), 42, long, bot.ReplyOptions{})
	require.NoError(t, err)

	require.Greater(t, len(texts), 1)
	for _, text := range texts {
		assert.LessOrEqual(t, len([]rune(text)), MaxMessageLength)
	}
	assert.Equal(t, long, strings.Join(texts, "\n"))
}

func TestSendMessageKeyboardOnLastChunkOnly(t *testing.T) {
	var markups []bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		_, hasMarkup := params["reply_markup"]
		markups = append(markups, hasMarkup)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	b := NewBot("test-token")
	b.SetAPIBase(server.URL)

	long := strings.Repeat("z\n", 4000)
	err := b.SendMessage(context.Background(), 42, long, bot.ReplyOptions{
		Keyboard: [][]bot.InlineButton{{{Text: "Public Stats", CallbackData: "publicstats"}}},
	})
	require.NoError(t, err)

	require.Greater(t, len(markups), 1)
	for _, hasMarkup := range markups[:len(markups)-1] {
		assert.False(t, hasMarkup)
	}
	assert.True(t, markups[len(markups)-1])
}

func TestCallSurfacesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 31","parameters":{"retry_after":31}}`))
	}))
	defer server.Close()

	b := NewBot("test-token")
	b.SetAPIBase(server.URL)

	err := b.call(context.Background(), "getUpdates", map[string]interface{}{"offset": 0}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.RateLimited())
	assert.Equal(t, 31*time.Second, apiErr.RetryAfter)
}

func TestAnswerCallback(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/answerCallbackQuery"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer server.Close()

	b := NewBot("test-token")
	b.SetAPIBase(server.URL)

	err := b.AnswerCallback(context.Background(), "cb1", "Your User ID: 42", true)
	require.NoError(t, err)
	assert.Equal(t, "cb1", got["callback_query_id"])
	assert.Equal(t, true, got["show_alert"])
}
