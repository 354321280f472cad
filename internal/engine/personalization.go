package engine

import (
	"context"
	"fmt"

	"examforge/internal/cache"
)

// StaticPersonalizationEngine returns a fixed topic list for every user. It is
// the bootstrap strategy used before any attempt signal exists.
type StaticPersonalizationEngine struct {
	topics []string
}

func NewStaticPersonalizationEngine(topics []string) *StaticPersonalizationEngine {
	return &StaticPersonalizationEngine{topics: topics}
}

func (e *StaticPersonalizationEngine) DetermineWeakPoints(_ context.Context, _ uint) ([]string, error) {
	out := make([]string, len(e.topics))
	copy(out, e.topics)
	return out, nil
}

// RedisPersonalizationEngine ranks a user's weak topics from the miss counters
// accumulated by the weak-point cache. A user with no history gets an empty
// list, not an error.
type RedisPersonalizationEngine struct {
	weakPoints *cache.WeakPointCache
	limit      int
}

func NewRedisPersonalizationEngine(weakPoints *cache.WeakPointCache, limit int) *RedisPersonalizationEngine {
	if limit <= 0 {
		limit = 5
	}
	return &RedisPersonalizationEngine{weakPoints: weakPoints, limit: limit}
}

func (e *RedisPersonalizationEngine) DetermineWeakPoints(ctx context.Context, userID uint) ([]string, error) {
	topics, err := e.weakPoints.TopTopics(ctx, userID, e.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersonalization, err)
	}
	return topics, nil
}
