package store

import (
	"context"
	"testing"

	"github.com/conorwd/raceql/db"
	"github.com/conorwd/raceql/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	handle, err := db.SetupSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { handle.Close() })
	if err := db.CreateTables(context.Background(), handle); err != nil {
		t.Fatalf("creating tables: %v", err)
	}
	return New(handle, nil)
}

func TestRecordOddsKeepsSingleCurrentRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	quotes := []models.Quote{
		{Fractional: "5/1", Decimal: "6.0", Updated: "2026-03-01T10:00:00"},
		{Fractional: "4/1", Decimal: "5.0", Updated: "2026-03-01T11:00:00"},
		{Fractional: "9/2", Decimal: "5.5", Updated: "2026-03-01T12:00:00"},
	}
	for _, q := range quotes {
		if err := s.RecordOdds(ctx, "rac_1", "hrs_1", "bet365", q); err != nil {
			t.Fatalf("RecordOdds: %v", err)
		}
	}

	current, err := s.CurrentOddsByRunner(ctx, models.RunnerKey("rac_1", "hrs_1"))
	if err != nil {
		t.Fatalf("CurrentOddsByRunner: %v", err)
	}
	if len(current) != 1 {
		t.Fatalf("current rows = %d, want 1", len(current))
	}
	if current[0].Fractional != "9/2" {
		t.Errorf("current fractional = %q, want 9/2", current[0].Fractional)
	}

	history, err := s.OddsHistory(ctx, models.RunnerKey("rac_1", "hrs_1"), "bet365")
	if err != nil {
		t.Fatalf("OddsHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history rows = %d, want 3", len(history))
	}
	// Newest first.
	if history[0].Fractional != "9/2" || history[2].Fractional != "5/1" {
		t.Errorf("history order = [%s %s %s], want newest first",
			history[0].Fractional, history[1].Fractional, history[2].Fractional)
	}
}

func TestRecordOddsBookmakersAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordOdds(ctx, "rac_1", "hrs_1", "bet365", models.Quote{Fractional: "5/1"}); err != nil {
		t.Fatalf("RecordOdds: %v", err)
	}
	if err := s.RecordOdds(ctx, "rac_1", "hrs_1", "skybet", models.Quote{Fractional: "11/2"}); err != nil {
		t.Fatalf("RecordOdds: %v", err)
	}
	if err := s.RecordOdds(ctx, "rac_1", "hrs_2", "bet365", models.Quote{Fractional: "7/1"}); err != nil {
		t.Fatalf("RecordOdds: %v", err)
	}

	current, err := s.CurrentOddsByRace(ctx, "rac_1")
	if err != nil {
		t.Fatalf("CurrentOddsByRace: %v", err)
	}
	if len(current) != 3 {
		t.Errorf("current rows = %d, want 3 across bookmakers and runners", len(current))
	}
}

func TestRecordOddsRejectsMissingKeys(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordOdds(context.Background(), "", "hrs_1", "bet365", models.Quote{}); err == nil {
		t.Error("RecordOdds with empty race_id = nil, want error")
	}
	if err := s.RecordOdds(context.Background(), "rac_1", "hrs_1", "", models.Quote{}); err == nil {
		t.Error("RecordOdds with empty bookmaker = nil, want error")
	}
}
