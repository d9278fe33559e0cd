// Package ingest turns raw upstream JSON documents into relational rows.
// Every entity type is idempotent to re-ingest: the same document twice
// leaves the same rows behind.
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/conorwd/raceql/models"
	"github.com/conorwd/raceql/retry"
	"github.com/conorwd/raceql/store"
)

// courseBatchSize is how many courses commit per transaction.
const courseBatchSize = 25

// Engine decomposes payloads by entity type and writes them through the
// store. Bulk batches retry on a fixed interval; single-record writes back
// off exponentially.
type Engine struct {
	store *store.Store
	log   *zap.Logger

	bulk      retry.Policy
	perRecord retry.Policy
}

// NewEngine builds an Engine with the default retry policies.
func NewEngine(st *store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:     st,
		log:       log,
		bulk:      retry.Policy{MaxAttempts: 5, Backoff: retry.Fixed(10 * time.Second)},
		perRecord: retry.Policy{MaxAttempts: 5, Backoff: retry.Exponential(time.Second)},
	}
}

// Ingest stores one payload of the given entity type and writes an audit
// row describing what happened: which call (entity plus the params that
// selected the document) touched how many records. Record-level problems
// land in the outcome's Failures; only an undecodable payload or a document
// missing its top-level keys returns an error.
func (e *Engine) Ingest(ctx context.Context, entity EntityType, payload []byte, params map[string]string) (SyncOutcome, error) {
	start := time.Now()
	out := SyncOutcome{Endpoint: string(entity)}

	var err error
	switch entity {
	case EntityCourses:
		err = e.ingestCourses(ctx, payload, &out)
	case EntityRacecards:
		err = e.ingestRacecards(ctx, payload, &out)
	case EntityResults:
		err = e.ingestResults(ctx, payload, &out)
	case EntityOdds:
		err = e.ingestOdds(ctx, payload, &out)
	case EntityHorseDetail:
		err = e.ingestHorseDetail(ctx, payload, &out)
	case EntityJockeyResults:
		err = e.ingestJockeyResults(ctx, payload, &out)
	case EntityTrainerResults:
		err = e.ingestTrainerResults(ctx, payload, &out)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}

	status := out.Status()
	errMsg := strings.Join(out.Failures, "; ")
	if err != nil {
		status = "failed"
		errMsg = err.Error()
	}
	var paramStr string
	if len(params) > 0 {
		paramStr = store.CanonicalParams(params)
	}
	e.store.LogSync(ctx, out.Endpoint, paramStr, status, errMsg, out.Records, start, time.Now())

	if err != nil {
		e.log.Error("ingest failed",
			zap.String("entity", string(entity)),
			zap.Error(err))
		return out, err
	}
	e.log.Info("ingest done",
		zap.String("entity", string(entity)),
		zap.Int("records", out.Records),
		zap.Int("failures", len(out.Failures)))
	return out, nil
}

func (e *Engine) inTx(ctx context.Context, fn func(tx bun.Tx) error) error {
	return e.store.DB().RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(tx)
	})
}

// ingestCourses validates records individually, so one malformed course
// costs exactly that course, then commits in fixed-size batches. A batch
// that still fails after retries is reported and the next batch runs.
func (e *Engine) ingestCourses(ctx context.Context, raw []byte, out *SyncOutcome) error {
	var payload CoursesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode courses: %w", err)
	}

	for i := 0; i < len(payload.Courses); i += courseBatchSize {
		end := i + courseBatchSize
		if end > len(payload.Courses) {
			end = len(payload.Courses)
		}

		rows := make([]*models.Course, 0, end-i)
		for _, c := range payload.Courses[i:end] {
			if c.ID == "" || c.Course == "" {
				out.Failures = append(out.Failures, fmt.Sprintf("course missing id or name: %q/%q", c.ID, c.Course))
				continue
			}
			rows = append(rows, &models.Course{
				CourseID:   c.ID,
				Course:     c.Course,
				RegionCode: c.RegionCode,
				Region:     c.Region,
			})
		}
		if len(rows) == 0 {
			continue
		}

		err := e.bulk.Do(ctx, func() error {
			return e.inTx(ctx, func(tx bun.Tx) error {
				return store.UpsertCourses(ctx, tx, rows)
			})
		})
		if err != nil {
			e.log.Warn("course batch failed", zap.Int("offset", i), zap.Error(err))
			out.Failures = append(out.Failures, fmt.Sprintf("courses batch at %d: %v", i, err))
			continue
		}
		out.Records += len(rows)
	}
	return nil
}

// ingestRacecards writes each racecard as one transactional unit: course
// stub, race, reference entities, runners. A card missing its race_id
// aborts the whole call since nothing under it can be keyed.
func (e *Engine) ingestRacecards(ctx context.Context, raw []byte, out *SyncOutcome) error {
	var payload RacecardsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode racecards: %w", err)
	}

	for _, card := range payload.Racecards {
		if card.RaceID == "" {
			return fmt.Errorf("racecard missing race_id (course %q, off %q)", card.Course, card.OffTime)
		}
		e.storeRacecard(ctx, card, out)
	}
	return nil
}

func (e *Engine) storeRacecard(ctx context.Context, card Racecard, out *SyncOutcome) {
	race := &models.Race{
		RaceID:        card.RaceID,
		CourseID:      card.CourseID,
		Date:          card.Date,
		OffTime:       card.OffTime,
		RaceName:      card.RaceName,
		Distance:      card.Distance,
		DistanceF:     card.DistanceF,
		Region:        card.Region,
		Pattern:       card.Pattern,
		RaceClass:     card.RaceClass,
		Type:          card.Type,
		AgeBand:       card.AgeBand,
		RatingBand:    card.RatingBand,
		Prize:         card.Prize,
		FieldSize:     card.FieldSize,
		Going:         card.Going,
		GoingDetailed: card.GoingDetailed,
		Surface:       card.Surface,
		Jumps:         card.Jumps,
		BigRace:       card.BigRace,
		IsAbandoned:   card.IsAbandoned,
	}

	runners := make([]CardRunner, 0, len(card.Runners))
	for _, r := range card.Runners {
		if r.HorseID == "" {
			out.Failures = append(out.Failures, fmt.Sprintf("runner missing horse_id in race %s", card.RaceID))
			continue
		}
		runners = append(runners, r)
	}

	err := e.bulk.Do(ctx, func() error {
		return e.inTx(ctx, func(tx bun.Tx) error {
			if card.CourseID != "" {
				course := &models.Course{CourseID: card.CourseID, Course: card.Course, Region: card.Region}
				if err := store.UpsertCourses(ctx, tx, []*models.Course{course}); err != nil {
					return err
				}
			}
			if err := store.UpsertRace(ctx, tx, race); err != nil {
				return err
			}
			for _, r := range runners {
				if err := e.storeCardRunner(ctx, tx, card.RaceID, r); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		e.log.Warn("racecard failed", zap.String("race_id", card.RaceID), zap.Error(err))
		out.Failures = append(out.Failures, fmt.Sprintf("racecard %s: %v", card.RaceID, err))
		return
	}
	out.Records++
}

func (e *Engine) storeCardRunner(ctx context.Context, tx bun.Tx, raceID string, r CardRunner) error {
	horse := &models.Horse{
		HorseID:   r.HorseID,
		Horse:     r.Horse,
		DOB:       r.DOB,
		Age:       r.Age,
		Sex:       r.Sex,
		SexCode:   r.SexCode,
		Colour:    r.Colour,
		Region:    r.Region,
		Dam:       r.Dam,
		DamID:     r.DamID,
		Sire:      r.Sire,
		SireID:    r.SireID,
		Damsire:   r.Damsire,
		DamsireID: r.DamsireID,
	}
	if err := store.UpsertHorse(ctx, tx, horse); err != nil {
		return err
	}
	if r.TrainerID != "" {
		trainer := &models.Trainer{TrainerID: r.TrainerID, Trainer: r.Trainer, TrainerLocation: r.TrainerLocation}
		if err := store.UpsertTrainer(ctx, tx, trainer); err != nil {
			return err
		}
	}
	if r.JockeyID != "" {
		jockey := &models.Jockey{JockeyID: r.JockeyID, Jockey: r.Jockey}
		if err := store.UpsertJockey(ctx, tx, jockey); err != nil {
			return err
		}
	}
	if r.OwnerID != "" {
		owner := &models.Owner{OwnerID: r.OwnerID, Owner: r.Owner}
		if err := store.UpsertOwner(ctx, tx, owner); err != nil {
			return err
		}
	}

	runner := &models.Runner{
		RunnerID:       models.RunnerKey(raceID, r.HorseID),
		RaceID:         raceID,
		HorseID:        r.HorseID,
		JockeyID:       r.JockeyID,
		TrainerID:      r.TrainerID,
		OwnerID:        r.OwnerID,
		Number:         r.Number,
		Draw:           r.Draw,
		Headgear:       r.Headgear,
		HeadgearRun:    r.HeadgearRun,
		WindSurgery:    r.WindSurgery,
		WindSurgeryRun: r.WindSurgeryRun,
		Lbs:            r.Lbs,
		Ofr:            r.Ofr,
		RPR:            r.RPR,
		TS:             r.TS,
		LastRun:        r.LastRun,
		Form:           r.Form,
		Comment:        r.Comment,
		Spotlight:      r.Spotlight,
		SilkURL:        r.SilkURL,
		TrainerRTF:     r.TrainerRTF,
		IsNonRunner:    r.IsNonRunner,
	}
	return store.UpsertRunner(ctx, tx, runner)
}

// ingestResults mirrors racecards: each completed race commits as one
// unit. Races already known from the card get their going and abandonment
// refreshed; unknown races are created from the result document alone.
func (e *Engine) ingestResults(ctx context.Context, raw []byte, out *SyncOutcome) error {
	var payload ResultsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}

	for _, res := range payload.Results {
		if res.RaceID == "" {
			return fmt.Errorf("result missing race_id (course %q, off %q)", res.Course, res.Off)
		}
		e.storeRaceResult(ctx, res, out)
	}
	return nil
}

func (e *Engine) storeRaceResult(ctx context.Context, res RaceResult, out *SyncOutcome) {
	race := &models.Race{
		RaceID:    res.RaceID,
		CourseID:  res.CourseID,
		Date:      res.Date,
		OffTime:   res.Off,
		RaceName:  res.RaceName,
		Distance:  res.Dist,
		DistanceF: res.DistF,
		Region:    res.Region,
		RaceClass: res.RaceClass,
		Type:      res.Type,
		Going:     res.Going,
	}

	lines := make([]ResultRunner, 0, len(res.Runners))
	for _, r := range res.Runners {
		if r.HorseID == "" {
			out.Failures = append(out.Failures, fmt.Sprintf("result runner missing horse_id in race %s", res.RaceID))
			continue
		}
		lines = append(lines, r)
	}

	err := e.bulk.Do(ctx, func() error {
		return e.inTx(ctx, func(tx bun.Tx) error {
			if res.CourseID != "" {
				course := &models.Course{CourseID: res.CourseID, Course: res.Course, Region: res.Region}
				if err := store.UpsertCourses(ctx, tx, []*models.Course{course}); err != nil {
					return err
				}
			}
			if err := store.UpsertRace(ctx, tx, race); err != nil {
				return err
			}
			for _, r := range lines {
				if err := e.storeResultLine(ctx, tx, res.RaceID, r); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		e.log.Warn("result failed", zap.String("race_id", res.RaceID), zap.Error(err))
		out.Failures = append(out.Failures, fmt.Sprintf("result %s: %v", res.RaceID, err))
		return
	}
	out.Records++
}

func (e *Engine) storeResultLine(ctx context.Context, tx bun.Tx, raceID string, r ResultRunner) error {
	if err := store.UpsertHorse(ctx, tx, &models.Horse{HorseID: r.HorseID, Horse: r.Horse, Age: r.Age, Sex: r.Sex}); err != nil {
		return err
	}
	if r.JockeyID != "" {
		if err := store.UpsertJockey(ctx, tx, &models.Jockey{JockeyID: r.JockeyID, Jockey: r.Jockey}); err != nil {
			return err
		}
	}
	if r.TrainerID != "" {
		if err := store.UpsertTrainer(ctx, tx, &models.Trainer{TrainerID: r.TrainerID, Trainer: r.Trainer}); err != nil {
			return err
		}
	}
	if r.OwnerID != "" {
		if err := store.UpsertOwner(ctx, tx, &models.Owner{OwnerID: r.OwnerID, Owner: r.Owner}); err != nil {
			return err
		}
	}

	result := &models.Result{
		ResultID:  models.RunnerKey(raceID, r.HorseID),
		RaceID:    raceID,
		HorseID:   r.HorseID,
		JockeyID:  r.JockeyID,
		TrainerID: r.TrainerID,
		OwnerID:   r.OwnerID,
		SP:        r.SP,
		SPDec:     r.SPDec,
		Number:    r.Number,
		Position:  r.Position,
		Draw:      r.Draw,
		Btn:       r.Btn,
		OvrBtn:    r.OvrBtn,
		Age:       r.Age,
		Sex:       r.Sex,
		Weight:    r.Weight,
		WeightLbs: r.WeightLbs,
		Headgear:  r.Headgear,
		Time:      r.Time,
		OrRating:  r.Or,
		RPR:       r.RPR,
		TSR:       r.TSR,
		Prize:     r.Prize,
		Comment:   r.Comment,
		SilkURL:   r.SilkURL,
	}
	return store.UpsertResult(ctx, tx, result)
}

// ingestOdds records one quote per bookmaker through the flip-then-insert
// path. Each bookmaker is its own unit; a flaky write for one book does
// not block the rest.
func (e *Engine) ingestOdds(ctx context.Context, raw []byte, out *SyncOutcome) error {
	var payload OddsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode odds: %w", err)
	}
	if payload.RaceID == "" || payload.HorseID == "" {
		return fmt.Errorf("odds document missing race_id or horse_id")
	}

	for bookmaker, quote := range payload.Odds {
		if bookmaker == "" {
			out.Failures = append(out.Failures, "odds quote missing bookmaker")
			continue
		}
		q := quote
		err := e.perRecord.Do(ctx, func() error {
			return e.store.RecordOdds(ctx, payload.RaceID, payload.HorseID, bookmaker, q)
		})
		if err != nil {
			out.Failures = append(out.Failures, fmt.Sprintf("odds %s/%s %s: %v", payload.RaceID, payload.HorseID, bookmaker, err))
			continue
		}
		out.Records++
	}
	return nil
}

// ingestHorseDetail merges the full horse record and replaces its medical
// history and press quotes.
func (e *Engine) ingestHorseDetail(ctx context.Context, raw []byte, out *SyncOutcome) error {
	var payload HorseDetailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode horse detail: %w", err)
	}
	if payload.HorseID == "" {
		return fmt.Errorf("horse detail missing horse_id")
	}

	horse := &models.Horse{
		HorseID:       payload.HorseID,
		Horse:         payload.Horse,
		DOB:           payload.DOB,
		Age:           payload.Age,
		Sex:           payload.Sex,
		SexCode:       payload.SexCode,
		Colour:        payload.Colour,
		Region:        payload.Region,
		Breeder:       payload.Breeder,
		Dam:           payload.Dam,
		DamID:         payload.DamID,
		DamRegion:     payload.DamRegion,
		Sire:          payload.Sire,
		SireID:        payload.SireID,
		SireRegion:    payload.SireRegion,
		Damsire:       payload.Damsire,
		DamsireID:     payload.DamsireID,
		DamsireRegion: payload.DamsireRegion,
	}

	medical := make([]*models.RunnerMedical, 0, len(payload.MedicalHistory))
	for _, m := range payload.MedicalHistory {
		medical = append(medical, &models.RunnerMedical{HorseID: payload.HorseID, Date: m.Date, Type: m.Type})
	}
	quotes := make([]*models.RunnerQuote, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		quotes = append(quotes, &models.RunnerQuote{
			HorseID:   payload.HorseID,
			Date:      q.Date,
			Race:      q.Race,
			Course:    q.Course,
			CourseID:  q.CourseID,
			DistanceF: q.DistanceF,
			Quote:     q.Quote,
		})
	}

	err := e.perRecord.Do(ctx, func() error {
		return e.inTx(ctx, func(tx bun.Tx) error {
			if err := store.UpsertHorse(ctx, tx, horse); err != nil {
				return err
			}
			if err := store.ReplaceMedicalHistory(ctx, tx, payload.HorseID, medical); err != nil {
				return err
			}
			return store.ReplaceQuotes(ctx, tx, payload.HorseID, quotes)
		})
	})
	if err != nil {
		out.Failures = append(out.Failures, fmt.Sprintf("horse %s: %v", payload.HorseID, err))
		return nil
	}
	out.Records++
	return nil
}

// ingestJockeyResults stores a jockey's historical result lines. Lines
// arrive flat, each carrying its own race_id.
func (e *Engine) ingestJockeyResults(ctx context.Context, raw []byte, out *SyncOutcome) error {
	var payload JockeyResultsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode jockey results: %w", err)
	}

	for _, jr := range payload.JockeyResults {
		if jr.JockeyID == "" {
			out.Failures = append(out.Failures, "jockey results block missing jockey_id")
			continue
		}
		jockey := &models.Jockey{
			JockeyID:  jr.JockeyID,
			Jockey:    jr.Jockey,
			FirstName: jr.FirstName,
			LastName:  jr.LastName,
			Type:      jr.Type,
		}
		err := e.perRecord.Do(ctx, func() error {
			return store.UpsertJockey(ctx, e.store.DB(), jockey)
		})
		if err != nil {
			out.Failures = append(out.Failures, fmt.Sprintf("jockey %s: %v", jr.JockeyID, err))
			continue
		}
		e.storeFlatLines(ctx, jr.Results, out)
	}
	return nil
}

// ingestTrainerResults is the trainer twin of ingestJockeyResults.
func (e *Engine) ingestTrainerResults(ctx context.Context, raw []byte, out *SyncOutcome) error {
	var payload TrainerResultsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode trainer results: %w", err)
	}

	for _, tr := range payload.TrainerResults {
		if tr.TrainerID == "" {
			out.Failures = append(out.Failures, "trainer results block missing trainer_id")
			continue
		}
		trainer := &models.Trainer{
			TrainerID:       tr.TrainerID,
			Trainer:         tr.Trainer,
			TrainerLocation: tr.TrainerLocation,
		}
		err := e.perRecord.Do(ctx, func() error {
			return store.UpsertTrainer(ctx, e.store.DB(), trainer)
		})
		if err != nil {
			out.Failures = append(out.Failures, fmt.Sprintf("trainer %s: %v", tr.TrainerID, err))
			continue
		}
		e.storeFlatLines(ctx, tr.Results, out)
	}
	return nil
}

// storeFlatLines writes individual result lines, each in its own
// transaction with per-record backoff.
func (e *Engine) storeFlatLines(ctx context.Context, lines []ResultRunner, out *SyncOutcome) {
	for _, line := range lines {
		if line.RaceID == "" || line.HorseID == "" {
			out.Failures = append(out.Failures, fmt.Sprintf("result line missing race_id or horse_id (%q/%q)", line.RaceID, line.HorseID))
			continue
		}
		l := line
		err := e.perRecord.Do(ctx, func() error {
			return e.inTx(ctx, func(tx bun.Tx) error {
				return e.storeResultLine(ctx, tx, l.RaceID, l)
			})
		})
		if err != nil {
			out.Failures = append(out.Failures, fmt.Sprintf("result line %s/%s: %v", l.RaceID, l.HorseID, err))
			continue
		}
		out.Records++
	}
}
