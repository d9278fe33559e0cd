package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/conorwd/raceql/racingapi"
	"github.com/conorwd/raceql/store"
)

// fakeAPI counts calls per endpoint and serves canned documents.
type fakeAPI struct {
	courses      json.RawMessage
	odds         json.RawMessage
	courseCalls  int
	oddsCalls    int
	coursesFails bool
}

func (f *fakeAPI) Courses(ctx context.Context) (json.RawMessage, error) {
	f.courseCalls++
	if f.coursesFails {
		return nil, errors.New("upstream down")
	}
	return f.courses, nil
}

func (f *fakeAPI) Racecards(ctx context.Context, tier racingapi.Tier) (json.RawMessage, error) {
	return json.RawMessage(`{"racecards":[]}`), nil
}

func (f *fakeAPI) TodayResults(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"results":[]}`), nil
}

func (f *fakeAPI) Odds(ctx context.Context, raceID, horseID string) (json.RawMessage, error) {
	f.oddsCalls++
	return f.odds, nil
}

func (f *fakeAPI) Horse(ctx context.Context, horseID string, tier racingapi.Tier) (json.RawMessage, error) {
	return json.RawMessage(`{"horse_id":"` + horseID + `","horse":"Some Horse"}`), nil
}

func (f *fakeAPI) JockeyResults(ctx context.Context, jockeyID string) (json.RawMessage, error) {
	return json.RawMessage(`{"jockey_results":[]}`), nil
}

func (f *fakeAPI) TrainerResults(ctx context.Context, trainerID string) (json.RawMessage, error) {
	return json.RawMessage(`{"trainer_results":[]}`), nil
}

func newTestSyncer(t *testing.T, api *fakeAPI) (*Syncer, *store.Store) {
	t.Helper()
	e, st := newTestEngine(t)
	return NewSyncer(api, e, st, nil, time.Hour), st
}

func TestSyncCoursesUsesResponseCache(t *testing.T) {
	api := &fakeAPI{courses: json.RawMessage(`{"courses":[{"id":"crs_1","course":"Ascot"}]}`)}
	s, _ := newTestSyncer(t, api)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := s.SyncCourses(ctx)
		if err != nil {
			t.Fatalf("SyncCourses pass %d: %v", i, err)
		}
		if out.Records != 1 {
			t.Errorf("records = %d, want 1", out.Records)
		}
	}

	if api.courseCalls != 1 {
		t.Errorf("upstream calls = %d, want 1 with the rest served from cache", api.courseCalls)
	}
}

func TestSyncCoursesPropagatesFetchError(t *testing.T) {
	api := &fakeAPI{coursesFails: true}
	s, _ := newTestSyncer(t, api)

	if _, err := s.SyncCourses(context.Background()); err == nil {
		t.Fatal("SyncCourses = nil, want fetch error")
	}
}

func TestSyncOddsBypassesCacheAndWrapsEnvelope(t *testing.T) {
	api := &fakeAPI{odds: json.RawMessage(`{"odds":{"bet365":{"fractional":"5/1","decimal":"6.0"}}}`)}
	s, st := newTestSyncer(t, api)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		out, err := s.SyncOdds(ctx, "rac_1", "hrs_1")
		if err != nil {
			t.Fatalf("SyncOdds pass %d: %v", i, err)
		}
		if out.Records != 1 {
			t.Errorf("records = %d, want 1 bookmaker", out.Records)
		}
	}

	// Prices always hit the upstream.
	if api.oddsCalls != 2 {
		t.Errorf("upstream odds calls = %d, want 2", api.oddsCalls)
	}

	history, err := st.OddsHistory(ctx, "rac_1_hrs_1", "bet365")
	if err != nil {
		t.Fatalf("OddsHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history rows = %d, want 2", len(history))
	}
}

func TestSyncDailyRunsAllSections(t *testing.T) {
	api := &fakeAPI{courses: json.RawMessage(`{"courses":[{"id":"crs_1","course":"Ascot"}]}`)}
	s, st := newTestSyncer(t, api)

	outcomes := s.SyncDaily(context.Background(), racingapi.TierStandard)
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want courses/racecards/results", len(outcomes))
	}
	for _, out := range outcomes {
		if out.Status() != "success" {
			t.Errorf("section %s status = %s, want success", out.Endpoint, out.Status())
		}
	}

	// The racecards audit row records which tier was pulled.
	logs, err := st.SyncLogs(context.Background(), 10)
	if err != nil {
		t.Fatalf("SyncLogs: %v", err)
	}
	want := store.CanonicalParams(map[string]string{"tier": "standard"})
	found := false
	for _, l := range logs {
		if l.Endpoint == "racecards" {
			found = true
			if l.Parameters != want {
				t.Errorf("racecards parameters = %q, want %q", l.Parameters, want)
			}
		}
	}
	if !found {
		t.Error("no racecards audit row written")
	}
}
