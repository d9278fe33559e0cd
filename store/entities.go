package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/conorwd/raceql/models"
)

// mergeSet builds an upsert SET clause that takes incoming non-empty values
// and keeps the stored value where the incoming one is blank. Reference
// entities accrete detail this way: a results stub never wipes pedigree
// fields a pro lookup already filled in.
func mergeSet(alias string, cols ...string) string {
	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("%s = COALESCE(NULLIF(EXCLUDED.%s, ''), %s.%s)", c, c, alias, c))
	}
	parts = append(parts, "updated_at = CURRENT_TIMESTAMP")
	return strings.Join(parts, ", ")
}

// UpsertCourses writes a slice of courses in one statement. idb may be a
// transaction or a plain handle.
func UpsertCourses(ctx context.Context, idb bun.IDB, courses []*models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	_, err := idb.NewInsert().Model(&courses).
		On("CONFLICT (course_id) DO UPDATE").
		Set(mergeSet("c", "course", "region_code", "region")).
		Exec(ctx)
	return err
}

// UpsertRace overwrites race metadata on conflict. Going and abandonment
// change between the card being published and the off, so incoming values
// always win.
func UpsertRace(ctx context.Context, idb bun.IDB, race *models.Race) error {
	_, err := idb.NewInsert().Model(race).
		On("CONFLICT (race_id) DO UPDATE").
		Set(mergeSet("rc",
			"course_id", "date", "off_time", "race_name", "distance",
			"distance_f", "region", "pattern", "race_class", "type",
			"age_band", "rating_band", "prize", "field_size", "going",
			"going_detailed", "surface", "jumps")).
		Set("big_race = EXCLUDED.big_race, is_abandoned = EXCLUDED.is_abandoned").
		Exec(ctx)
	return err
}

// UpsertHorse merges a horse record field by field.
func UpsertHorse(ctx context.Context, idb bun.IDB, horse *models.Horse) error {
	_, err := idb.NewInsert().Model(horse).
		On("CONFLICT (horse_id) DO UPDATE").
		Set(mergeSet("h",
			"horse", "dob", "age", "sex", "sex_code", "colour", "region",
			"breeder", "dam", "dam_id", "dam_region", "sire", "sire_id",
			"sire_region", "damsire", "damsire_id", "damsire_region")).
		Exec(ctx)
	return err
}

// UpsertTrainer merges a trainer record.
func UpsertTrainer(ctx context.Context, idb bun.IDB, trainer *models.Trainer) error {
	_, err := idb.NewInsert().Model(trainer).
		On("CONFLICT (trainer_id) DO UPDATE").
		Set(mergeSet("t", "trainer", "trainer_location")).
		Exec(ctx)
	return err
}

// UpsertJockey merges a jockey record.
func UpsertJockey(ctx context.Context, idb bun.IDB, jockey *models.Jockey) error {
	_, err := idb.NewInsert().Model(jockey).
		On("CONFLICT (jockey_id) DO UPDATE").
		Set(mergeSet("j", "jockey", "first_name", "last_name", "type")).
		Exec(ctx)
	return err
}

// UpsertOwner merges an owner record.
func UpsertOwner(ctx context.Context, idb bun.IDB, owner *models.Owner) error {
	_, err := idb.NewInsert().Model(owner).
		On("CONFLICT (owner_id) DO UPDATE").
		Set(mergeSet("o", "owner")).
		Exec(ctx)
	return err
}

// UpsertRunner inserts or updates a runner on its (race_id, horse_id)
// pairing. The non-runner flag always takes the incoming value since a late
// withdrawal is exactly the update we care about.
func UpsertRunner(ctx context.Context, idb bun.IDB, runner *models.Runner) error {
	_, err := idb.NewInsert().Model(runner).
		On("CONFLICT (race_id, horse_id) DO UPDATE").
		Set(mergeSet("rn",
			"jockey_id", "trainer_id", "owner_id", "number", "draw",
			"headgear", "headgear_run", "wind_surgery", "wind_surgery_run",
			"lbs", "ofr", "rpr", "ts", "last_run", "form", "comment",
			"spotlight", "silk_url", "trainer_rtf")).
		Set("is_non_runner = EXCLUDED.is_non_runner").
		Exec(ctx)
	return err
}

// UpsertResult inserts or updates a result on its (race_id, horse_id)
// pairing.
func UpsertResult(ctx context.Context, idb bun.IDB, result *models.Result) error {
	_, err := idb.NewInsert().Model(result).
		On("CONFLICT (race_id, horse_id) DO UPDATE").
		Set(mergeSet("r",
			"jockey_id", "trainer_id", "owner_id", "sp", "sp_dec", "number",
			"position", "draw", "btn", "ovr_btn", "age", "sex", "weight",
			"weight_lbs", "headgear", "time", "or_rating", "rpr", "tsr",
			"prize", "comment", "silk_url")).
		Exec(ctx)
	return err
}

// ReplaceMedicalHistory swaps the stored medical events for a horse with
// the incoming set. The upstream document is the full history, so replace
// is simpler than diffing.
func ReplaceMedicalHistory(ctx context.Context, idb bun.IDB, horseID string, events []*models.RunnerMedical) error {
	if _, err := idb.NewDelete().Model((*models.RunnerMedical)(nil)).
		Where("horse_id = ?", horseID).Exec(ctx); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	_, err := idb.NewInsert().Model(&events).Exec(ctx)
	return err
}

// ReplaceQuotes swaps the stored press quotes for a horse with the
// incoming set.
func ReplaceQuotes(ctx context.Context, idb bun.IDB, horseID string, quotes []*models.RunnerQuote) error {
	if _, err := idb.NewDelete().Model((*models.RunnerQuote)(nil)).
		Where("horse_id = ?", horseID).Exec(ctx); err != nil {
		return err
	}
	if len(quotes) == 0 {
		return nil
	}
	_, err := idb.NewInsert().Model(&quotes).Exec(ctx)
	return err
}
