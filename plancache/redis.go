// Package plancache keeps model output (filter plans, rendered answers)
// in redis so repeated questions skip the model entirely. Everything here
// degrades to a cache miss when redis is not around.
package plancache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient wraps redis.Client with JSON marshalling on both sides.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and pings. A failed ping returns nil, which the
// cache treats as "no redis".
func NewRedisClient(addr, password string, log *zap.Logger) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if log != nil {
			log.Warn("redis unavailable, plan cache disabled",
				zap.String("addr", addr),
				zap.Error(err))
		}
		return nil
	}
	return &RedisClient{client: client}
}

// Set stores a JSON-marshalled value with expiration.
func (r *RedisClient) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, expiration).Err()
}

// Get retrieves and unmarshals a value.
func (r *RedisClient) Get(ctx context.Context, key string, dest any) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Close closes the underlying connection.
func (r *RedisClient) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
