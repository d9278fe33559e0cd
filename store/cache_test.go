package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestCanonicalParamsIsOrderStable(t *testing.T) {
	a := CanonicalParams(map[string]string{"day": "today", "region": "gb"})
	b := CanonicalParams(map[string]string{"region": "gb", "day": "today"})
	if a != b {
		t.Errorf("canonical forms differ: %q vs %q", a, b)
	}
	if got := CanonicalParams(nil); got != "{}" {
		t.Errorf("CanonicalParams(nil) = %q, want {}", got)
	}
}

func TestCacheRoundTripAndExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s = s.WithClock(func() time.Time { return now })

	params := map[string]string{"region": "gb"}
	payload := json.RawMessage(`{"courses":[{"id":"crs_1"}]}`)
	if err := s.CachePut(ctx, "/courses", params, payload, time.Hour); err != nil {
		t.Fatalf("CachePut: %v", err)
	}

	got, ok := s.CacheGet(ctx, "/courses", params)
	if !ok {
		t.Fatal("CacheGet miss right after put")
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s, want %s", got, payload)
	}

	if _, ok := s.CacheGet(ctx, "/courses", map[string]string{"region": "ire"}); ok {
		t.Error("CacheGet hit for different params")
	}
	if _, ok := s.CacheGet(ctx, "/results", params); ok {
		t.Error("CacheGet hit for different endpoint")
	}

	// Step past the ttl.
	now = now.Add(2 * time.Hour)
	if _, ok := s.CacheGet(ctx, "/courses", params); ok {
		t.Error("CacheGet hit after expiry")
	}
}

func TestCachePutReplacesExistingEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	params := map[string]string{"date": "2026-03-01"}
	if err := s.CachePut(ctx, "/racecards", params, json.RawMessage(`{"v":1}`), time.Hour); err != nil {
		t.Fatalf("CachePut: %v", err)
	}
	if err := s.CachePut(ctx, "/racecards", params, json.RawMessage(`{"v":2}`), time.Hour); err != nil {
		t.Fatalf("CachePut: %v", err)
	}

	got, ok := s.CacheGet(ctx, "/racecards", params)
	if !ok {
		t.Fatal("CacheGet miss after overwrite")
	}
	if string(got) != `{"v":2}` {
		t.Errorf("payload = %s, want {\"v\":2}", got)
	}
}
