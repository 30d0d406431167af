package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublishLock is a SetNX lock with a TTL so a crashed holder cannot
// block a card token forever.
type RedisPublishLock struct {
	client *redis.Client
}

func NewRedisPublishLock(client *redis.Client) *RedisPublishLock {
	return &RedisPublishLock{client: client}
}

func (l *RedisPublishLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, "1", ttl).Result()
}

func (l *RedisPublishLock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}
