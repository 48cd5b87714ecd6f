package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"dokanpos/backend/internal/domain"
)

type RedisMembershipConfigCache struct {
	client *redis.Client
}

func NewRedisMembershipConfigCache(addr string, password string, db int) *RedisMembershipConfigCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisMembershipConfigCache{client: client}
}

func (c *RedisMembershipConfigCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisMembershipConfigCache) Close() error {
	return c.client.Close()
}

func (c *RedisMembershipConfigCache) Get(ctx context.Context, key string) (*domain.MembershipConfig, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cfg domain.MembershipConfig
	if err := json.Unmarshal([]byte(val), &cfg); err != nil {
		return nil, false, err
	}
	return &cfg, true, nil
}

func (c *RedisMembershipConfigCache) Set(ctx context.Context, key string, value *domain.MembershipConfig, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisMembershipConfigCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
