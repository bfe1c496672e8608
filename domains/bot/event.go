package bot

// User carries the sender fields the bot cares about.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsBot        bool   `json:"is_bot"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// TextCommand is an inbound chat message. Command is the leading
// "/word" token in lower case, or empty for plain text.
type TextCommand struct {
	ChatID    int64
	MessageID int
	Command   string
	Text      string
	From      User
}

// Callback is an inline-button press.
type Callback struct {
	ID     string
	Data   string
	ChatID int64
	From   User
}

// Event is the tagged union of inbound events, decoded at the
// transport boundary. Exactly one field is non-nil.
type Event struct {
	Text     *TextCommand
	Callback *Callback
}

// From returns the sender regardless of variant.
func (e Event) From() User {
	if e.Text != nil {
		return e.Text.From
	}
	if e.Callback != nil {
		return e.Callback.From
	}
	return User{}
}
