package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// WeakPointCache keeps per-user miss counters by topic in a Redis sorted set.
// Every wrong attempt bumps the topic's score; the personalization engine
// reads topics back highest-score first. Keys expire so stale signal ages out.
type WeakPointCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewWeakPointCache(client *redisv9.Client, ttl time.Duration) *WeakPointCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &WeakPointCache{client: client, ttl: ttl}
}

// RecordMiss increments the miss counter for a topic and refreshes the TTL.
func (c *WeakPointCache) RecordMiss(ctx context.Context, userID uint, topic string) error {
	key := c.key(userID)
	if err := c.client.ZIncrBy(ctx, key, 1, topic).Err(); err != nil {
		return fmt.Errorf("redis incr weak point failed: %w", err)
	}
	if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire weak points failed: %w", err)
	}
	return nil
}

// TopTopics returns the user's topics ordered by miss count, worst first.
// ZRevRange on a missing key yields an empty slice, so no signal yet comes
// back as zero topics rather than an error.
func (c *WeakPointCache) TopTopics(ctx context.Context, userID uint, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	topics, err := c.client.ZRevRange(ctx, c.key(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read weak points failed: %w", err)
	}
	return topics, nil
}

func (c *WeakPointCache) key(userID uint) string {
	return fmt.Sprintf("exam:weakpoints:%d", userID)
}
