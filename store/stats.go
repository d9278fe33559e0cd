package store

import (
	"context"
	"fmt"

	"github.com/conorwd/raceql/models"
)

// statRow is a flat scan target for the aggregate queries.
type statRow struct {
	EntityID string `bun:"entity_id"`
	GroupKey string `bun:"group_key"`
	Runs     int    `bun:"runs"`
	Wins     int    `bun:"wins"`
	Places   int    `bun:"places"`
	BestPos  string `bun:"best_pos"`
}

const trainerStatSQL = `
SELECT trainer_id AS entity_id, '' AS group_key,
	COUNT(*) AS runs,
	SUM(CASE WHEN position = '1' THEN 1 ELSE 0 END) AS wins,
	SUM(CASE WHEN position IN ('1','2','3') THEN 1 ELSE 0 END) AS places,
	MIN(position) AS best_pos
FROM results
WHERE trainer_id <> '' AND position <> ''
GROUP BY trainer_id`

const jockeyStatSQL = `
SELECT jockey_id AS entity_id, '' AS group_key,
	COUNT(*) AS runs,
	SUM(CASE WHEN position = '1' THEN 1 ELSE 0 END) AS wins,
	SUM(CASE WHEN position IN ('1','2','3') THEN 1 ELSE 0 END) AS places,
	MIN(position) AS best_pos
FROM results
WHERE jockey_id <> '' AND position <> ''
GROUP BY jockey_id`

const horseCourseStatSQL = `
SELECT r.horse_id AS entity_id, rc.course_id AS group_key,
	COUNT(*) AS runs,
	SUM(CASE WHEN r.position = '1' THEN 1 ELSE 0 END) AS wins,
	SUM(CASE WHEN r.position IN ('1','2','3') THEN 1 ELSE 0 END) AS places,
	MIN(r.position) AS best_pos
FROM results r
INNER JOIN races rc ON rc.race_id = r.race_id
WHERE r.position <> ''
GROUP BY r.horse_id, rc.course_id`

// RecomputeStatistics rebuilds the derived aggregate tables from results.
// Rows are recomputed whole and upserted; nothing is maintained
// incrementally.
func (s *Store) RecomputeStatistics(ctx context.Context) error {
	var trainerRows []statRow
	if err := s.db.NewRaw(trainerStatSQL).Scan(ctx, &trainerRows); err != nil {
		return fmt.Errorf("trainer aggregates: %w", err)
	}
	for _, r := range trainerRows {
		st := &models.TrainerStatistics{
			TrainerID:     r.EntityID,
			PeriodType:    "all",
			PeriodValue:   "",
			Runs:          r.Runs,
			Wins:          r.Wins,
			Places:        r.Places,
			WinPercentage: winPct(r.Wins, r.Runs),
		}
		if _, err := s.db.NewInsert().
			Model(st).
			On("CONFLICT (trainer_id, period_type, period_value) DO UPDATE").
			Set("runs = EXCLUDED.runs").
			Set("wins = EXCLUDED.wins").
			Set("places = EXCLUDED.places").
			Set("win_percentage = EXCLUDED.win_percentage").
			Set("last_calculated = EXCLUDED.last_calculated").
			Exec(ctx); err != nil {
			return fmt.Errorf("upserting trainer stats for %s: %w", r.EntityID, err)
		}
	}

	var jockeyRows []statRow
	if err := s.db.NewRaw(jockeyStatSQL).Scan(ctx, &jockeyRows); err != nil {
		return fmt.Errorf("jockey aggregates: %w", err)
	}
	for _, r := range jockeyRows {
		st := &models.JockeyStatistics{
			JockeyID:      r.EntityID,
			PeriodType:    "all",
			PeriodValue:   "",
			Rides:         r.Runs,
			Wins:          r.Wins,
			Places:        r.Places,
			WinPercentage: winPct(r.Wins, r.Runs),
		}
		if _, err := s.db.NewInsert().
			Model(st).
			On("CONFLICT (jockey_id, period_type, period_value) DO UPDATE").
			Set("rides = EXCLUDED.rides").
			Set("wins = EXCLUDED.wins").
			Set("places = EXCLUDED.places").
			Set("win_percentage = EXCLUDED.win_percentage").
			Set("last_calculated = EXCLUDED.last_calculated").
			Exec(ctx); err != nil {
			return fmt.Errorf("upserting jockey stats for %s: %w", r.EntityID, err)
		}
	}

	var horseRows []statRow
	if err := s.db.NewRaw(horseCourseStatSQL).Scan(ctx, &horseRows); err != nil {
		return fmt.Errorf("horse aggregates: %w", err)
	}
	for _, r := range horseRows {
		st := &models.HorseStatistics{
			HorseID:       r.EntityID,
			StatType:      "course",
			StatValue:     r.GroupKey,
			Runs:          r.Runs,
			Wins:          r.Wins,
			Places:        r.Places,
			WinPercentage: winPct(r.Wins, r.Runs),
			BestPosition:  r.BestPos,
		}
		if _, err := s.db.NewInsert().
			Model(st).
			On("CONFLICT (horse_id, stat_type, stat_value) DO UPDATE").
			Set("runs = EXCLUDED.runs").
			Set("wins = EXCLUDED.wins").
			Set("places = EXCLUDED.places").
			Set("win_percentage = EXCLUDED.win_percentage").
			Set("best_position = EXCLUDED.best_position").
			Set("last_calculated = EXCLUDED.last_calculated").
			Exec(ctx); err != nil {
			return fmt.Errorf("upserting horse stats for %s: %w", r.EntityID, err)
		}
	}

	return nil
}

func winPct(wins, runs int) float64 {
	if runs == 0 {
		return 0
	}
	return float64(wins) * 100 / float64(runs)
}
