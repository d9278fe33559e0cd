package plancache

import (
	"context"
	"testing"
	"time"
)

func TestQueryHashNormalizesWhitespaceAndCase(t *testing.T) {
	a := queryHash("Who won  the Gold Cup?")
	b := queryHash("who won the gold cup?")
	if a != b {
		t.Errorf("hashes differ for trivially rephrased query: %s vs %s", a, b)
	}
	if a == queryHash("who won the grand national?") {
		t.Error("distinct queries share a hash")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	if _, ok := c.GetAnswer(ctx, "q"); ok {
		t.Error("nil cache reported a hit")
	}
	if _, ok := c.GetPlan(ctx, "q"); ok {
		t.Error("nil cache reported a plan hit")
	}
	if c.InCooldown(ctx, "q") {
		t.Error("nil cache reported a cooldown")
	}
	// Writes must not panic.
	c.PutAnswer(ctx, "q", "a")
	c.PutPlan(ctx, "q", []byte(`{}`))
	c.SetCooldown(ctx, "q")
}

func TestCacheWithoutBackendDegradesToMisses(t *testing.T) {
	ctx := context.Background()
	c := New(nil, time.Minute)

	c.PutAnswer(ctx, "q", "a")
	if _, ok := c.GetAnswer(ctx, "q"); ok {
		t.Error("backend-less cache returned a hit")
	}
}
