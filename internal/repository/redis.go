package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"karigar/internal/config"

	"github.com/redis/go-redis/v9"
)

type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{
		client: client,
		ttl:    ttl,
	}
}

func occupiedKey(serviceProfileID, date string) string {
	return fmt.Sprintf("occupied:%s:%s", serviceProfileID, date)
}

func (r *RedisSlotCache) GetOccupied(ctx context.Context, serviceProfileID, date string) ([]string, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, occupiedKey(serviceProfileID, date)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get occupied slots from redis: %w", err)
	}

	var slots []string
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal occupied slots: %w", err)
	}
	if slots == nil {
		slots = []string{}
	}
	return slots, true, nil
}

func (r *RedisSlotCache) SetOccupied(ctx context.Context, serviceProfileID, date string, slots []string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if slots == nil {
		slots = []string{}
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal occupied slots: %w", err)
	}

	if err := r.client.Set(ctx, occupiedKey(serviceProfileID, date), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set occupied slots in redis: %w", err)
	}
	return nil
}

func (r *RedisSlotCache) Invalidate(ctx context.Context, serviceProfileID, date string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, occupiedKey(serviceProfileID, date)).Err(); err != nil {
		return fmt.Errorf("failed to delete occupied slots from redis: %w", err)
	}
	return nil
}

func (r *RedisSlotCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	rlKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, rlKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, rlKey, window)
	}

	return count <= int64(limit), nil
}

func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
