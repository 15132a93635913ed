package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/devlog/devlog/internal/ports"
)

// Config controls the Redis-backed limiter
type Config struct {
	Enabled  bool
	RedisURL string
}

type redisLimiter struct {
	client *redis.Client
	logger *logrus.Logger
}

// New builds a Redis-backed rate limiter, or a no-op limiter when
// disabled.
func New(config Config, logger *logrus.Logger) (ports.RateLimiter, error) {
	if !config.Enabled {
		logger.Info("rate limiting disabled")
		return &noopLimiter{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisLimiter{client: client, logger: logger}, nil
}

func (s *redisLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count < limit, nil
}

func (s *redisLimiter) Increment(ctx context.Context, key string, window time.Duration) error {
	pipeline := s.client.Pipeline()
	pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)
	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	return nil
}

func (s *redisLimiter) Block(ctx context.Context, key string, duration time.Duration) error {
	blockKey := "blocked:" + key
	if err := s.client.Set(ctx, blockKey, time.Now().Unix(), duration).Err(); err != nil {
		return fmt.Errorf("failed to block key: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"key":      key,
		"duration": duration,
	}).Warn("key blocked after too many attempts")
	return nil
}

func (s *redisLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, "blocked:"+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

type noopLimiter struct{}

func (n *noopLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func (n *noopLimiter) Increment(ctx context.Context, key string, window time.Duration) error {
	return nil
}

func (n *noopLimiter) Block(ctx context.Context, key string, duration time.Duration) error {
	return nil
}

func (n *noopLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	return false, nil
}
