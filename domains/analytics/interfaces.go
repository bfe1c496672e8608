package analytics

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by a stats cache when no entry is present.
var ErrCacheMiss = errors.New("stats cache miss")

type IAnalyticsRepository interface {
	// Upsert write path, called once per processed event
	RecordInteraction(ctx context.Context, userID int64, username, firstName string) error

	// Aggregate read path
	CountUsers(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, threshold time.Time) (int64, error)
	TodayActiveCount(ctx context.Context, day time.Time) (int64, error)
	TotalInteractions(ctx context.Context) (int64, error)

	// Top users by interaction count
	TopUsers(ctx context.Context, limit int64) ([]TopUser, error)
}

type IStatsCache interface {
	GetStats(ctx context.Context) (*BotStats, error)
	SetStats(ctx context.Context, stats *BotStats) error
}
