package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/conorwd/raceql/models"
)

// CanonicalParams serializes a parameter set with stable key ordering so
// that semantically identical parameters always produce the same cache key.
func CanonicalParams(params map[string]string) string {
	if len(params) == 0 {
		return "{}"
	}
	// encoding/json sorts map keys, which is exactly the determinism needed.
	b, _ := json.Marshal(params)
	return string(b)
}

// CacheGet returns the cached payload for (endpoint, params) if present and
// unexpired. Misses and lookup failures both return ok=false; the cache
// never raises on a read.
func (s *Store) CacheGet(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, bool) {
	entry := new(models.APICache)
	err := s.db.NewSelect().
		Model(entry).
		Where("endpoint = ?", endpoint).
		Where("params = ?", CanonicalParams(params)).
		Where("expires_at > ?", s.now()).
		OrderExpr("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("cache lookup failed", zap.String("endpoint", endpoint), zap.Error(err))
		}
		return nil, false
	}
	return entry.ResponseData, true
}

// CachePut stores or overwrites the entry for (endpoint, params) and resets
// its expiry to now + ttl.
func (s *Store) CachePut(ctx context.Context, endpoint string, params map[string]string, payload json.RawMessage, ttl time.Duration) error {
	key := CanonicalParams(params)

	// Replace rather than accumulate: one live row per key.
	if _, err := s.db.NewDelete().
		Model((*models.APICache)(nil)).
		Where("endpoint = ?", endpoint).
		Where("params = ?", key).
		Exec(ctx); err != nil {
		return err
	}

	entry := &models.APICache{
		Endpoint:     endpoint,
		Params:       key,
		ResponseData: payload,
		ExpiresAt:    s.now().Add(ttl),
	}
	_, err := s.db.NewInsert().Model(entry).Exec(ctx)
	return err
}
