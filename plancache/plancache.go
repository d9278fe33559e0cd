package plancache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	defaultTTL  = time.Hour
	cooldownTTL = 30 * time.Second
)

// Cache holds plans and answers keyed by a hash of the normalized query.
// A nil *Cache, or one built on a nil redis client, is a valid no-op.
type Cache struct {
	redis *RedisClient
	ttl   time.Duration
}

// New builds a Cache. redis may be nil.
func New(redis *RedisClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{redis: redis, ttl: ttl}
}

// queryHash normalizes whitespace and case so trivial rephrasings of the
// same question share a key.
func queryHash(query string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(norm))
	return fmt.Sprintf("%x", sum[:8])
}

// GetAnswer returns a cached rendered answer.
func (c *Cache) GetAnswer(ctx context.Context, query string) (string, bool) {
	if c == nil || c.redis == nil {
		return "", false
	}
	var answer string
	if err := c.redis.Get(ctx, "answer:"+queryHash(query), &answer); err != nil {
		return "", false
	}
	return answer, answer != ""
}

// PutAnswer caches a rendered answer.
func (c *Cache) PutAnswer(ctx context.Context, query, answer string) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Set(ctx, "answer:"+queryHash(query), answer, c.ttl)
}

// GetPlan returns a cached filter plan.
func (c *Cache) GetPlan(ctx context.Context, query string) (json.RawMessage, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	var plan json.RawMessage
	if err := c.redis.Get(ctx, "plan:"+queryHash(query), &plan); err != nil {
		return nil, false
	}
	return plan, len(plan) > 0
}

// PutPlan caches a filter plan.
func (c *Cache) PutPlan(ctx context.Context, query string, plan json.RawMessage) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Set(ctx, "plan:"+queryHash(query), plan, c.ttl)
}

// SetCooldown marks a query as recently attempted so a failing model call
// is not hammered.
func (c *Cache) SetCooldown(ctx context.Context, query string) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Set(ctx, "cooldown:"+queryHash(query), time.Now().Unix(), cooldownTTL)
}

// InCooldown reports whether a query was attempted within the cooldown
// window.
func (c *Cache) InCooldown(ctx context.Context, query string) bool {
	if c == nil || c.redis == nil {
		return false
	}
	var ts int64
	if err := c.redis.Get(ctx, "cooldown:"+queryHash(query), &ts); err != nil {
		return false
	}
	return ts > 0
}
