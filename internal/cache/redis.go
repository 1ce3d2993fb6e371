package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
)

// RedisCache tracks invalid code attempts so a keypad cannot be brute
// forced. The cache is optional: when disabled or unreachable the kiosk runs
// without throttling, since code entry must keep working fully offline.
type RedisCache struct {
	client      *redis.Client
	enabled     bool
	maxFailures int64
	failureTTL  time.Duration
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{
		client:      client,
		enabled:     true,
		maxFailures: cfg.MaxFailures,
		failureTTL:  cfg.FailureTTL,
	}, nil
}

// RegisterFailure counts one invalid code submission and reports whether the
// kiosk should stop accepting codes for a while.
func (c *RedisCache) RegisterFailure(ctx context.Context) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	key := failureKey()
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to count invalid attempt")
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, c.failureTTL).Err(); err != nil {
			return false, errors.Wrap(err, "failed to expire attempt counter")
		}
	}
	return count > c.maxFailures, nil
}

// Throttled reports whether the invalid-attempt budget is already exhausted
func (c *RedisCache) Throttled(ctx context.Context) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	count, err := c.client.Get(ctx, failureKey()).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to read attempt counter")
	}
	return count > c.maxFailures, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if !c.enabled || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func failureKey() string {
	return "kiosk:invalid_attempts"
}
