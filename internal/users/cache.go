package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey        = "adda:leaderboard:v1"
	defaultLeaderboardTTL = time.Minute
)

// Cache holds the ordered user list behind the leaderboard.
type Cache interface {
	GetLeaderboard(ctx context.Context) ([]User, bool, error)
	SetLeaderboard(ctx context.Context, users []User) error
	InvalidateLeaderboard(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache parses a redis:// URL. ttl <= 0 uses a one minute default.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisCacheFromClient(redis.NewClient(opts), ttl), nil
}

func NewRedisCacheFromClient(c *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultLeaderboardTTL
	}
	return &RedisCache{client: c, ttl: ttl}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) GetLeaderboard(ctx context.Context) ([]User, bool, error) {
	raw, err := r.client.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, false, fmt.Errorf("decode cached leaderboard: %w", err)
	}
	return users, true, nil
}

func (r *RedisCache) SetLeaderboard(ctx context.Context, users []User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, leaderboardKey, raw, r.ttl).Err()
}

func (r *RedisCache) InvalidateLeaderboard(ctx context.Context) error {
	return r.client.Del(ctx, leaderboardKey).Err()
}

func (r *RedisCache) Close() error { return r.client.Close() }
