package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQuotaStore implements the daily usage counter on Redis INCR.
// INCR is atomic server-side, so two concurrent admits for the same key can
// never observe the same post-increment value.
type RedisQuotaStore struct {
	client *redis.Client
}

// NewRedisQuotaStore creates a quota counter backed by Redis.
func NewRedisQuotaStore(client *redis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{client: client}
}

func (s *RedisQuotaStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, "quota:"+key)
	pipe.Expire(ctx, "quota:"+key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
