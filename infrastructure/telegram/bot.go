package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kareem2099/FreeID/domains/bot"
)

const (
	defaultAPIBase = "https://api.telegram.org"

	// MaxMessageLength is Telegram's per-message character limit.
	MaxMessageLength = 4096

	pollTimeout       = 30 * time.Second
	pollInterval      = 1 * time.Second
	apiErrorBackoff   = 10 * time.Second
	defaultRetryAfter = 5 * time.Second
)

// Update represents an incoming update from Telegram.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message represents a Telegram message.
type Message struct {
	MessageID int       `json:"message_id"`
	From      *bot.User `json:"from,omitempty"`
	Chat      *Chat     `json:"chat"`
	Date      int       `json:"date"`
	Text      string    `json:"text,omitempty"`
}

// CallbackQuery represents an inline-button press.
type CallbackQuery struct {
	ID      string    `json:"id"`
	From    *bot.User `json:"from"`
	Message *Message  `json:"message,omitempty"`
	Data    string    `json:"data,omitempty"`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// APIError is a non-OK response from the Telegram Bot API.
type APIError struct {
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// RateLimited reports whether the error is a 429 with a retry hint.
func (e *APIError) RateLimited() bool {
	return e.Code == http.StatusTooManyRequests
}

// Bot polls the Telegram Bot API and dispatches decoded events to a
// handler. It also implements bot.Replier for outbound messages.
type Bot struct {
	token   string
	apiBase string
	handler bot.Handler
	client  *http.Client

	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

func NewBot(token string) *Bot {
	return &Bot{
		token:    token,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: pollTimeout + 5*time.Second},
		stopChan: make(chan struct{}),
	}
}

// SetHandler sets the event handler. The handler needs the bot as its
// Replier, so it cannot be passed at construction time.
func (b *Bot) SetHandler(handler bot.Handler) {
	b.handler = handler
}

// SetAPIBase overrides the Telegram API base URL, used in tests.
func (b *Bot) SetAPIBase(base string) {
	b.apiBase = base
}

// Start begins polling for updates. It blocks until Stop is called.
// Transport errors never terminate the loop; each error kind has its
// own backoff.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("bot is already running")
	}
	if b.handler == nil {
		b.mu.Unlock()
		return fmt.Errorf("no event handler configured")
	}
	b.running = true
	b.mu.Unlock()

	me, err := b.getMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram bot auth failed: %w", err)
	}
	logrus.Infof("Telegram bot @%s connected successfully", me)

	offset := 0
	for {
		select {
		case <-b.stopChan:
			logrus.Info("Telegram bot stopped")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			updates, err := b.getUpdates(ctx, offset)
			if err != nil {
				b.sleepFor(err)
				continue
			}

			for _, update := range updates {
				offset = update.UpdateID + 1
				if event, ok := decodeUpdate(update); ok {
					b.handler.HandleEvent(ctx, event)
				}
			}

			time.Sleep(pollInterval)
		}
	}
}

// sleepFor waits the backoff appropriate for the error kind: rate limits
// wait the API-specified duration, everything else a fixed interval.
func (b *Bot) sleepFor(err error) {
	if apiErr, ok := err.(*APIError); ok && apiErr.RateLimited() {
		wait := apiErr.RetryAfter
		if wait <= 0 {
			wait = defaultRetryAfter
		}
		logrus.Warnf("Rate limited by Telegram API. Retrying after %s", wait)
		time.Sleep(wait)
		return
	}
	logrus.Errorf("Failed to get Telegram updates: %v", err)
	time.Sleep(apiErrorBackoff)
}

// Stop stops the polling loop.
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		close(b.stopChan)
		b.running = false
	}
}

func (b *Bot) getMe(ctx context.Context) (string, error) {
	var result struct {
		Username string `json:"username"`
	}
	if err := b.call(ctx, "getMe", nil, &result); err != nil {
		return "", err
	}
	return result.Username, nil
}

func (b *Bot) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	params := map[string]interface{}{
		"offset":  offset,
		"timeout": int(pollTimeout.Seconds()),
	}

	var updates []Update
	if err := b.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends text to a chat, splitting messages over the length
// limit into sequential chunks on line boundaries. The inline keyboard,
// if any, rides on the last chunk.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string, opts bot.ReplyOptions) error {
	chunks := SplitMessage(text, MaxMessageLength)

	for i, chunk := range chunks {
		params := map[string]interface{}{
			"chat_id": chatID,
			"text":    chunk,
		}
		if opts.ParseMode != "" {
			params["parse_mode"] = opts.ParseMode
		}
		if i == 0 && opts.ReplyToMessageID != 0 {
			params["reply_to_message_id"] = opts.ReplyToMessageID
		}
		if i == len(chunks)-1 && len(opts.Keyboard) > 0 {
			params["reply_markup"] = map[string]interface{}{
				"inline_keyboard": opts.Keyboard,
			}
		}

		if err := b.call(ctx, "sendMessage", params, nil); err != nil {
			return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
		}
	}
	return nil
}

// AnswerCallback answers an inline-button press, optionally as an alert.
func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	params := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
		"show_alert":        showAlert,
	}
	if err := b.call(ctx, "answerCallbackQuery", params, nil); err != nil {
		return fmt.Errorf("failed to answer callback %s: %w", callbackID, err)
	}
	return nil
}

// call posts a JSON payload to one Bot API method and decodes the result
// envelope. Non-OK responses become *APIError.
func (b *Bot) call(ctx context.Context, method string, params map[string]interface{}, out interface{}) error {
	url := fmt.Sprintf("%s/bot%s/%s", b.apiBase, b.token, method)

	var body io.Reader
	if params != nil {
		jsonData, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result,omitempty"`
		ErrorCode   int             `json:"error_code,omitempty"`
		Description string          `json:"description,omitempty"`
		Parameters  *struct {
			RetryAfter int `json:"retry_after,omitempty"`
		} `json:"parameters,omitempty"`
	}

	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w, body: %s", err, string(respBody))
	}

	if !envelope.OK {
		apiErr := &APIError{
			Code:        envelope.ErrorCode,
			Description: envelope.Description,
		}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = time.Duration(envelope.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

// decodeUpdate maps a raw update onto the event union. Updates without a
// usable message or callback are dropped.
func decodeUpdate(update Update) (bot.Event, bool) {
	if cb := update.CallbackQuery; cb != nil && cb.From != nil {
		var chatID int64
		if cb.Message != nil && cb.Message.Chat != nil {
			chatID = cb.Message.Chat.ID
		}
		return bot.Event{Callback: &bot.Callback{
			ID:     cb.ID,
			Data:   cb.Data,
			ChatID: chatID,
			From:   *cb.From,
		}}, true
	}

	msg := update.Message
	if msg == nil || msg.Text == "" {
		return bot.Event{}, false
	}
	if msg.Chat == nil {
		logrus.Warn("Telegram message has no chat info")
		return bot.Event{}, false
	}
	if msg.From == nil {
		logrus.Warn("Telegram message has no sender info")
		return bot.Event{}, false
	}

	return bot.Event{Text: &bot.TextCommand{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Command:   parseCommand(msg.Text),
		Text:      msg.Text,
		From:      *msg.From,
	}}, true
}

// parseCommand extracts the leading "/command" token, stripping any
// @botname suffix. Plain text yields an empty command.
func parseCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if at := strings.Index(cmd, "@"); at != -1 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
