package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client for the async transcript job queue.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client from URL.
// URL format: redis://[:password@]host:port/db
func NewRedisClient(url string) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// RPush pushes a value to the right of a list. The producer side of the
// transcript job queue: when a background transcription finishes, its result
// JSON is pushed under "transcript:result:{job_id}" for the consumer to BLPOP.
func (r *RedisClient) RPush(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return r.client.RPush(ctx, key, data).Err()
}

// SetExpiry sets TTL on a key. Called after RPush so results don't persist
// past their polling window.
func (r *RedisClient) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Expire(ctx, key, ttl).Err()
}

// BLPop performs a blocking left pop on the specified key. The consumer side
// of the job queue: blocks for up to timeout waiting for the producer's
// RPush, returning redis.Nil on expiry.
//
// Returns the raw JSON bytes of the popped value.
func (r *RedisClient) BLPop(ctx context.Context, timeout time.Duration, key string) ([]byte, error) {
	result, err := r.client.BLPop(ctx, timeout, key).Result()
	if err != nil {
		return nil, err
	}

	// BLPop returns [key, value] pair
	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected blpop result format")
	}

	return []byte(result[1]), nil
}

// Ping checks Redis connectivity.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
