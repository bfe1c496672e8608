package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kareem2099/FreeID/domains/bot"
)

const (
	apologyText     = "Sorry, an error occurred while processing your request."
	adminOnlyText   = "This is admin-only. Use /publicstats for public statistics."
	usageHintText   = "Use /start to get your info or /myid for ID only, /username for username only."
	callbackErrText = "An error occurred while processing your request."
	projectURL      = "https://github.com/kareem2099/FreeID"
	timestampLayout = "2006-01-02 15:04:05"
)

// BotService routes decoded chat events to their handlers. Dispatch is
// stateless: each event is handled independently, and any fault inside a
// handler is recovered at the event boundary.
type BotService struct {
	analytics *AnalyticsService
	replier   bot.Replier
	adminID   int64
}

func NewBotService(analytics *AnalyticsService, replier bot.Replier, adminID int64) *BotService {
	return &BotService{
		analytics: analytics,
		replier:   replier,
		adminID:   adminID,
	}
}

// HandleEvent dispatches one inbound event. Panics and handler errors are
// logged with the user id and handler name, and turned into an apology
// reply; they never escape to the polling loop.
func (s *BotService) HandleEvent(ctx context.Context, event bot.Event) {
	eventID := uuid.NewString()
	user := event.From()

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Recovered panic handling event %s for user %d: %v", eventID, user.ID, r)
			s.apologize(ctx, event)
		}
	}()

	var handler string
	var err error

	switch {
	case event.Callback != nil:
		handler, err = s.handleCallback(ctx, event.Callback)
	case event.Text != nil:
		handler, err = s.handleText(ctx, event.Text)
	default:
		return
	}

	if err != nil {
		logrus.Errorf("Error in %s for user %d (event %s): %v", handler, user.ID, eventID, err)
		s.apologize(ctx, event)
	}
}

func (s *BotService) handleText(ctx context.Context, msg *bot.TextCommand) (string, error) {
	switch msg.Command {
	case "/start", "/help":
		return "send_welcome", s.sendWelcome(ctx, msg)
	case "/myid":
		return "send_my_id", s.sendMyID(ctx, msg)
	case "/username":
		return "send_username", s.sendUsername(ctx, msg)
	case "/publicstats":
		return "get_public_stats", s.sendPublicStats(ctx, msg)
	case "/stats":
		return "get_stats", s.sendAdminStats(ctx, msg)
	default:
		return "echo_all", s.sendUsageHint(ctx, msg)
	}
}

func (s *BotService) handleCallback(ctx context.Context, cb *bot.Callback) (string, error) {
	s.analytics.RecordInteraction(ctx, cb.From.ID, cb.From.Username, cb.From.FirstName)

	switch cb.Data {
	case "myid":
		text := fmt.Sprintf("Your User ID: %d", cb.From.ID)
		return "handle_callback", s.replier.AnswerCallback(ctx, cb.ID, text, true)
	case "username":
		text := fmt.Sprintf("Your Username: %s", usernameOrNotSet(cb.From.Username))
		return "handle_callback", s.replier.AnswerCallback(ctx, cb.ID, text, true)
	case "publicstats":
		stats := s.analytics.GetStats(ctx)
		text := fmt.Sprintf(
			"👥 Total Users: %d\n📅 Today Active: %d\n📈 Weekly Active: %d\n💬 Total Interactions: %d",
			stats.TotalUsers, stats.TodayActive, stats.WeekActive, stats.TotalInteractions,
		)
		return "handle_callback", s.replier.AnswerCallback(ctx, cb.ID, text, true)
	default:
		return "handle_callback", nil
	}
}

func (s *BotService) sendWelcome(ctx context.Context, msg *bot.TextCommand) error {
	user := msg.From
	s.analytics.RecordInteraction(ctx, user.ID, user.Username, user.FirstName)

	info := fmt.Sprintf(`🔍 <b>User Information</b> 🔍

👤 <b>First Name:</b> %s
👥 <b>Last Name:</b> %s
🎭 <b>Username:</b> %s
🆔 <b>User ID:</b> <code>%d</code>

🌍 <b>Language:</b> %s

📍 <b>Is Bot:</b> %s
🤖 <b>Is Premium:</b> %s

For more information about the bot, visit: %s`,
		orNA(user.FirstName),
		orNA(user.LastName),
		usernameOrNotSet(user.Username),
		user.ID,
		orNA(user.LanguageCode),
		yesNo(user.IsBot),
		yesNo(user.IsPremium),
		projectURL,
	)

	return s.replier.SendMessage(ctx, msg.ChatID, info, bot.ReplyOptions{
		ParseMode:        "HTML",
		ReplyToMessageID: msg.MessageID,
		Keyboard: [][]bot.InlineButton{
			{
				{Text: "Get My ID", CallbackData: "myid"},
				{Text: "Get Username", CallbackData: "username"},
			},
			{
				{Text: "Public Stats", CallbackData: "publicstats"},
			},
		},
	})
}

func (s *BotService) sendMyID(ctx context.Context, msg *bot.TextCommand) error {
	user := msg.From
	s.analytics.RecordInteraction(ctx, user.ID, user.Username, user.FirstName)

	return s.replier.SendMessage(ctx, msg.ChatID,
		fmt.Sprintf("Your User ID: `%d`", user.ID),
		bot.ReplyOptions{ParseMode: "Markdown", ReplyToMessageID: msg.MessageID},
	)
}

func (s *BotService) sendUsername(ctx context.Context, msg *bot.TextCommand) error {
	user := msg.From
	s.analytics.RecordInteraction(ctx, user.ID, user.Username, user.FirstName)

	return s.replier.SendMessage(ctx, msg.ChatID,
		fmt.Sprintf("Your Username: %s", usernameOrNotSet(user.Username)),
		bot.ReplyOptions{ReplyToMessageID: msg.MessageID},
	)
}

func (s *BotService) sendPublicStats(ctx context.Context, msg *bot.TextCommand) error {
	user := msg.From
	s.analytics.RecordInteraction(ctx, user.ID, user.Username, user.FirstName)

	stats := s.analytics.GetStats(ctx)
	text := fmt.Sprintf(`📊 *Bot Statistics* 📊

👥 *Total Users:* %d
📅 *Today Active Users:* %d
📈 *Weekly Active Users:* %d
💬 *Total Interactions:* %d

_Last updated: %s UTC_`,
		stats.TotalUsers, stats.TodayActive, stats.WeekActive, stats.TotalInteractions,
		time.Now().UTC().Format(timestampLayout),
	)

	return s.replier.SendMessage(ctx, msg.ChatID, text,
		bot.ReplyOptions{ParseMode: "Markdown", ReplyToMessageID: msg.MessageID})
}

// sendAdminStats serves the full breakdown, admin only. Non-admin callers
// get the fixed notice and trigger no aggregate queries.
func (s *BotService) sendAdminStats(ctx context.Context, msg *bot.TextCommand) error {
	user := msg.From
	if user.ID != s.adminID {
		return s.replier.SendMessage(ctx, msg.ChatID, adminOnlyText,
			bot.ReplyOptions{ReplyToMessageID: msg.MessageID})
	}

	s.analytics.RecordInteraction(ctx, user.ID, user.Username, user.FirstName)
	stats := s.analytics.GetStats(ctx)
	topUsers := s.analytics.GetTopUsers(ctx, DefaultTopUsersLimit)

	var b strings.Builder
	fmt.Fprintf(&b, `📊 *Bot Analytics* 📊

👥 *Total Users:* %d
📅 *Today Active Users:* %d
📈 *Weekly Active Users:* %d
💬 *Total Interactions:* %d
📊 *Avg Interactions/User:* %.1f

🔝 *Top %d Active Users:*
`,
		stats.TotalUsers, stats.TodayActive, stats.WeekActive,
		stats.TotalInteractions, stats.AvgInteractions, DefaultTopUsersLimit)

	for i, t := range topUsers {
		name := t.FirstName
		if name == "" {
			name = "Unknown"
		}
		username := t.Username
		if username == "" {
			username = "No username"
		}
		fmt.Fprintf(&b, "\n%d. %s (@%s) - %d interactions", i+1, name, username, t.InteractionCount)
	}

	fmt.Fprintf(&b, "\n\n_Last updated: %s UTC_", time.Now().UTC().Format(timestampLayout))

	return s.replier.SendMessage(ctx, msg.ChatID, b.String(),
		bot.ReplyOptions{ParseMode: "Markdown", ReplyToMessageID: msg.MessageID})
}

func (s *BotService) sendUsageHint(ctx context.Context, msg *bot.TextCommand) error {
	user := msg.From
	s.analytics.RecordInteraction(ctx, user.ID, user.Username, user.FirstName)

	return s.replier.SendMessage(ctx, msg.ChatID, usageHintText,
		bot.ReplyOptions{ReplyToMessageID: msg.MessageID})
}

// apologize sends the channel-appropriate short error reply.
func (s *BotService) apologize(ctx context.Context, event bot.Event) {
	var err error
	switch {
	case event.Callback != nil:
		err = s.replier.AnswerCallback(ctx, event.Callback.ID, callbackErrText, false)
	case event.Text != nil:
		err = s.replier.SendMessage(ctx, event.Text.ChatID, apologyText,
			bot.ReplyOptions{ReplyToMessageID: event.Text.MessageID})
	}
	if err != nil {
		logrus.Errorf("Failed to send error reply: %v", err)
	}
}

func usernameOrNotSet(username string) string {
	if username == "" {
		return "No username set"
	}
	return "@" + username
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
