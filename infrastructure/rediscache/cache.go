package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kareem2099/FreeID/domains/analytics"
)

const (
	statsKey = "freeid:stats"
	statsTTL = 30 * time.Second
)

// Cache keeps the composed bot statistics in Redis for a short TTL so
// stats commands stay cheap under load.
type Cache struct {
	Client *redis.Client
}

func New(addr, pass string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &Cache{Client: rdb}
}

func (c *Cache) GetStats(ctx context.Context) (*analytics.BotStats, error) {
	val, err := c.Client.Get(ctx, statsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, analytics.ErrCacheMiss
		}
		return nil, err
	}

	var stats analytics.BotStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Cache) SetStats(ctx context.Context, stats *analytics.BotStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, statsKey, data, statsTTL).Err()
}

func (c *Cache) Close() error {
	return c.Client.Close()
}
