package analytics

import "time"

// Collection names in the bot database.
const (
	UsersCollection     = "users"
	AnalyticsCollection = "analytics"

	// DailyActiveType is the discriminator for daily-active-user documents.
	DailyActiveType = "daily_active_users"
)

// UserRecord represents one distinct end user and their interaction history.
type UserRecord struct {
	UserID           int64     `bson:"user_id" json:"user_id"`
	Username         string    `bson:"username,omitempty" json:"username,omitempty"`
	FirstName        string    `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastInteraction  time.Time `bson:"last_interaction" json:"last_interaction"`
	InteractionCount int64     `bson:"interaction_count" json:"interaction_count"`
}

// BotStats represents the aggregate usage statistics served by the bot.
type BotStats struct {
	TotalUsers        int64   `json:"total_users"`
	TodayActive       int64   `json:"today_active"`
	WeekActive        int64   `json:"week_active"`
	TotalInteractions int64   `json:"total_interactions"`
	AvgInteractions   float64 `json:"avg_interactions"`
}

// TopUser is the projected view returned by the top-users query.
type TopUser struct {
	UserID           int64  `bson:"user_id" json:"user_id"`
	Username         string `bson:"username,omitempty" json:"username,omitempty"`
	FirstName        string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	InteractionCount int64  `bson:"interaction_count" json:"interaction_count"`
}

// Today returns the current UTC date truncated to midnight, the identity
// key of a daily-active-users document.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
