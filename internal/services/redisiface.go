package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the slice of redis the dedup ledger uses.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type RedisAdapter struct {
	client redis.UniversalClient
}

func NewRedisAdapter(client redis.UniversalClient) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, expiration).Result()
}

func (r *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
