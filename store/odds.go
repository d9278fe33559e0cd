package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/conorwd/raceql/models"
)

// RecordOdds appends a bookmaker quote for a runner. Within one transaction
// the previous current row for (race, horse, bookmaker) is flipped to
// not-current before the new row is inserted, so readers never see zero or
// two current rows for the same key.
func (s *Store) RecordOdds(ctx context.Context, raceID, horseID, bookmaker string, q models.Quote) error {
	if raceID == "" || horseID == "" || bookmaker == "" {
		return fmt.Errorf("record odds: race_id, horse_id and bookmaker are required")
	}

	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*models.Odds)(nil)).
			Set("is_current = ?", false).
			Where("race_id = ?", raceID).
			Where("horse_id = ?", horseID).
			Where("bookmaker = ?", bookmaker).
			Where("is_current = ?", true).
			Exec(ctx); err != nil {
			return fmt.Errorf("flipping current odds: %w", err)
		}

		row := &models.Odds{
			RaceID:     raceID,
			HorseID:    horseID,
			RunnerID:   models.RunnerKey(raceID, horseID),
			Bookmaker:  bookmaker,
			Fractional: q.Fractional,
			Decimal:    q.Decimal,
			EwPlaces:   q.EwPlaces,
			EwDenom:    q.EwDenom,
			Updated:    q.Updated,
			IsCurrent:  true,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("inserting odds: %w", err)
		}
		return nil
	})
}

// CurrentOddsByRace returns the current quote per (horse, bookmaker) for
// every runner in the race.
func (s *Store) CurrentOddsByRace(ctx context.Context, raceID string) ([]models.Odds, error) {
	var odds []models.Odds
	err := s.db.NewSelect().
		Model(&odds).
		Where("race_id = ?", raceID).
		Where("is_current = ?", true).
		Scan(ctx)
	return odds, err
}

// CurrentOddsByRunner returns the current quotes for one runner key.
func (s *Store) CurrentOddsByRunner(ctx context.Context, runnerID string) ([]models.Odds, error) {
	var odds []models.Odds
	err := s.db.NewSelect().
		Model(&odds).
		Where("runner_id = ?", runnerID).
		Where("is_current = ?", true).
		Scan(ctx)
	return odds, err
}

// OddsHistory returns every quote recorded for a runner, newest first,
// optionally narrowed to one bookmaker.
func (s *Store) OddsHistory(ctx context.Context, runnerID, bookmaker string) ([]models.Odds, error) {
	var odds []models.Odds
	q := s.db.NewSelect().
		Model(&odds).
		Where("runner_id = ?", runnerID)
	if bookmaker != "" {
		q = q.Where("bookmaker = ?", bookmaker)
	}

	err := q.OrderExpr("id DESC").Scan(ctx)
	return odds, err
}
