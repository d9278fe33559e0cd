package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conorwd/raceql/models"
	"github.com/conorwd/raceql/racingapi"
	"github.com/conorwd/raceql/store"
)

// Fetcher is the slice of the upstream client the Syncer needs.
type Fetcher interface {
	Courses(ctx context.Context) (json.RawMessage, error)
	Racecards(ctx context.Context, tier racingapi.Tier) (json.RawMessage, error)
	TodayResults(ctx context.Context) (json.RawMessage, error)
	Odds(ctx context.Context, raceID, horseID string) (json.RawMessage, error)
	Horse(ctx context.Context, horseID string, tier racingapi.Tier) (json.RawMessage, error)
	JockeyResults(ctx context.Context, jockeyID string) (json.RawMessage, error)
	TrainerResults(ctx context.Context, trainerID string) (json.RawMessage, error)
}

// Syncer drives a full refresh: fetch each endpoint (through the response
// cache) and hand the document to the Engine. A failed section is logged
// and the remaining sections still run.
type Syncer struct {
	api    Fetcher
	engine *Engine
	store  *store.Store
	log    *zap.Logger
	ttl    time.Duration
}

// NewSyncer wires a Syncer. ttl bounds how long a cached upstream response
// is reused instead of re-fetched.
func NewSyncer(api Fetcher, engine *Engine, st *store.Store, log *zap.Logger, ttl time.Duration) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{api: api, engine: engine, store: st, log: log, ttl: ttl}
}

// fetch consults the response cache before hitting the upstream API and
// stores fresh responses back with the configured TTL.
func (s *Syncer) fetch(ctx context.Context, endpoint string, params map[string]string, call func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if body, ok := s.store.CacheGet(ctx, endpoint, params); ok {
		return body, nil
	}
	body, err := call(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.CachePut(ctx, endpoint, params, body, s.ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
	return body, nil
}

// SyncCourses refreshes the course list.
func (s *Syncer) SyncCourses(ctx context.Context) (SyncOutcome, error) {
	body, err := s.fetch(ctx, "courses", nil, s.api.Courses)
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityCourses)}, fmt.Errorf("fetch courses: %w", err)
	}
	return s.engine.Ingest(ctx, EntityCourses, body, nil)
}

// SyncRacecards refreshes today's racecards at the given tier.
func (s *Syncer) SyncRacecards(ctx context.Context, tier racingapi.Tier) (SyncOutcome, error) {
	params := map[string]string{"tier": string(tier)}
	body, err := s.fetch(ctx, "racecards", params, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Racecards(ctx, tier)
	})
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityRacecards)}, fmt.Errorf("fetch racecards: %w", err)
	}
	return s.engine.Ingest(ctx, EntityRacecards, body, params)
}

// SyncResults refreshes today's results.
func (s *Syncer) SyncResults(ctx context.Context) (SyncOutcome, error) {
	body, err := s.fetch(ctx, "results/today", nil, s.api.TodayResults)
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityResults)}, fmt.Errorf("fetch results: %w", err)
	}
	return s.engine.Ingest(ctx, EntityResults, body, nil)
}

// SyncOdds refreshes the quotes for one runner. Odds responses are never
// cached; a stale price is worse than no price.
func (s *Syncer) SyncOdds(ctx context.Context, raceID, horseID string) (SyncOutcome, error) {
	body, err := s.api.Odds(ctx, raceID, horseID)
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityOdds)}, fmt.Errorf("fetch odds: %w", err)
	}
	var envelope struct {
		Odds map[string]models.Quote `json:"odds"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return SyncOutcome{Endpoint: string(EntityOdds)}, fmt.Errorf("decode odds response: %w", err)
	}
	merged, err := json.Marshal(OddsPayload{RaceID: raceID, HorseID: horseID, Odds: envelope.Odds})
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityOdds)}, err
	}
	return s.engine.Ingest(ctx, EntityOdds, merged, map[string]string{"race_id": raceID, "horse_id": horseID})
}

// SyncHorse refreshes one horse's detail record at the given tier.
func (s *Syncer) SyncHorse(ctx context.Context, horseID string, tier racingapi.Tier) (SyncOutcome, error) {
	params := map[string]string{"id": horseID, "tier": string(tier)}
	body, err := s.fetch(ctx, "horses", params, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Horse(ctx, horseID, tier)
	})
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityHorseDetail)}, fmt.Errorf("fetch horse %s: %w", horseID, err)
	}
	return s.engine.Ingest(ctx, EntityHorseDetail, body, params)
}

// SyncJockeyResults refreshes one jockey's result history.
func (s *Syncer) SyncJockeyResults(ctx context.Context, jockeyID string) (SyncOutcome, error) {
	params := map[string]string{"id": jockeyID}
	body, err := s.fetch(ctx, "jockeys/results", params, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.JockeyResults(ctx, jockeyID)
	})
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityJockeyResults)}, fmt.Errorf("fetch jockey results %s: %w", jockeyID, err)
	}
	return s.engine.Ingest(ctx, EntityJockeyResults, body, params)
}

// SyncTrainerResults refreshes one trainer's result history.
func (s *Syncer) SyncTrainerResults(ctx context.Context, trainerID string) (SyncOutcome, error) {
	params := map[string]string{"id": trainerID}
	body, err := s.fetch(ctx, "trainers/results", params, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.TrainerResults(ctx, trainerID)
	})
	if err != nil {
		return SyncOutcome{Endpoint: string(EntityTrainerResults)}, fmt.Errorf("fetch trainer results %s: %w", trainerID, err)
	}
	return s.engine.Ingest(ctx, EntityTrainerResults, body, params)
}

// SyncDaily runs the standard refresh: courses, today's racecards, today's
// results, then a statistics recompute. Section failures are collected so
// one bad endpoint never stops the rest.
func (s *Syncer) SyncDaily(ctx context.Context, tier racingapi.Tier) []SyncOutcome {
	var outcomes []SyncOutcome

	run := func(name string, fn func(context.Context) (SyncOutcome, error)) {
		out, err := fn(ctx)
		if err != nil {
			s.log.Error("sync section failed", zap.String("section", name), zap.Error(err))
		}
		outcomes = append(outcomes, out)
	}

	run("courses", s.SyncCourses)
	run("racecards", func(ctx context.Context) (SyncOutcome, error) {
		return s.SyncRacecards(ctx, tier)
	})
	run("results", s.SyncResults)

	if err := s.store.RecomputeStatistics(ctx); err != nil {
		s.log.Error("statistics recompute failed", zap.Error(err))
	}
	return outcomes
}
