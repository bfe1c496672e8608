package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kareem2099/FreeID/domains/analytics"
)

const (
	// DefaultTopUsersLimit matches the admin stats breakdown.
	DefaultTopUsersLimit = 5

	storeTimeout = 5 * time.Second
	weekWindow   = 7 * 24 * time.Hour
)

// AnalyticsService owns the interaction counters and aggregate stats.
// Store failures never propagate to the reply path: writes are logged
// and dropped, reads degrade to zero/empty results.
type AnalyticsService struct {
	repo  analytics.IAnalyticsRepository
	cache analytics.IStatsCache // optional, may be nil
}

func NewAnalyticsService(repo analytics.IAnalyticsRepository, cache analytics.IStatsCache) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache}
}

// RecordInteraction updates the user record and today's active set for
// one processed event. Errors are logged, never returned: a store outage
// must not cost the user their reply.
func (s *AnalyticsService) RecordInteraction(ctx context.Context, userID int64, username, firstName string) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.repo.RecordInteraction(ctx, userID, username, firstName); err != nil {
		logrus.Errorf("Error updating user analytics for user %d: %v", userID, err)
	}
}

// GetStats composes the aggregate usage statistics. Any store failure
// yields the all-zero aggregate so stats replies stay deliverable.
func (s *AnalyticsService) GetStats(ctx context.Context) *analytics.BotStats {
	if s.cache != nil {
		if cached, err := s.cache.GetStats(ctx); err == nil {
			return cached
		} else if !errors.Is(err, analytics.ErrCacheMiss) {
			logrus.Warnf("Stats cache read failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stats, err := s.computeStats(ctx)
	if err != nil {
		logrus.Errorf("Error getting bot stats: %v", err)
		return &analytics.BotStats{}
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats); err != nil {
			logrus.Warnf("Stats cache write failed: %v", err)
		}
	}
	return stats
}

func (s *AnalyticsService) computeStats(ctx context.Context) (*analytics.BotStats, error) {
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	today := analytics.Today()
	todayActive, err := s.repo.TodayActiveCount(ctx, today)
	if err != nil {
		return nil, err
	}

	weekActive, err := s.repo.CountActiveSince(ctx, today.Add(-weekWindow))
	if err != nil {
		return nil, err
	}

	totalInteractions, err := s.repo.TotalInteractions(ctx)
	if err != nil {
		return nil, err
	}

	stats := &analytics.BotStats{
		TotalUsers:        totalUsers,
		TodayActive:       todayActive,
		WeekActive:        weekActive,
		TotalInteractions: totalInteractions,
	}
	if totalUsers > 0 {
		stats.AvgInteractions = round1(float64(totalInteractions) / float64(totalUsers))
	}
	return stats, nil
}

// GetTopUsers returns up to limit users ranked by interaction count,
// descending, ties broken by ascending user id. Failures degrade to an
// empty list.
func (s *AnalyticsService) GetTopUsers(ctx context.Context, limit int64) []analytics.TopUser {
	if limit <= 0 {
		limit = DefaultTopUsersLimit
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	top, err := s.repo.TopUsers(ctx, limit)
	if err != nil {
		logrus.Errorf("Error getting top users: %v", err)
		return nil
	}
	return top
}

// round1 rounds to one decimal place, the precision the stats replies use.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
