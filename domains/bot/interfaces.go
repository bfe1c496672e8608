package bot

import "context"

// InlineButton is one button on an inline keyboard.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// ReplyOptions controls formatting of an outbound message.
type ReplyOptions struct {
	ParseMode        string // "HTML", "Markdown" or empty
	ReplyToMessageID int
	Keyboard         [][]InlineButton
}

// Replier is the outbound side of the chat transport.
type Replier interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts ReplyOptions) error
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
}

// Handler processes one decoded inbound event.
type Handler interface {
	HandleEvent(ctx context.Context, event Event)
}
