package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	_ "github.com/mattn/go-sqlite3"

	"github.com/conorwd/raceql/config"
	"github.com/conorwd/raceql/models"
)

// Bulk ingestion can hold long statements; interactive queries should not.
// Both get an upper bound so nothing blocks indefinitely.
const (
	bulkStatementTimeout = 30 * time.Minute
	connectTimeout       = 2 * time.Minute
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.PostgresDSN()),
		pgdriver.WithDialTimeout(connectTimeout),
		pgdriver.WithApplicationName("raceql"),
		pgdriver.WithConnParams(map[string]interface{}{
			"statement_timeout": fmt.Sprint(bulkStatementTimeout.Milliseconds()),
		}),
	)
	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// SetupSQLite opens an SQLite-backed bun.DB. Used by tests with an
// in-memory DSN; schema creation goes through the same CreateTables path.
func SetupSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// In-memory SQLite loses the database when the last connection closes.
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateTables creates all tables in dependency order, then the uniqueness
// constraints and filter indexes the query executor relies on.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Course)(nil),
		(*models.Horse)(nil),
		(*models.Trainer)(nil),
		(*models.Jockey)(nil),
		(*models.Owner)(nil),
		(*models.Race)(nil),
		(*models.Runner)(nil),
		(*models.Result)(nil),
		(*models.Odds)(nil),
		(*models.RunnerMedical)(nil),
		(*models.RunnerQuote)(nil),
		(*models.TrainerStatistics)(nil),
		(*models.JockeyStatistics)(nil),
		(*models.HorseStatistics)(nil),
		(*models.ApiSyncLog)(nil),
		(*models.APICache)(nil),
		(*models.ChatHistory)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	// Unique indexes double as upsert conflict targets; the partial index on
	// odds enforces at most one current row per (race, horse, bookmaker).
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_runners_race_horse ON runners (race_id, horse_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_results_race_horse ON results (race_id, horse_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_odds_current ON odds (race_id, horse_id, bookmaker) WHERE is_current`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_trainer_stat ON trainer_statistics (trainer_id, period_type, period_value)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_jockey_stat ON jockey_statistics (jockey_id, period_type, period_value)`,
		`CREATE INDEX IF NOT EXISTS idx_course_region_code ON courses (region_code)`,
		`CREATE INDEX IF NOT EXISTS idx_race_date ON races (date)`,
		`CREATE INDEX IF NOT EXISTS idx_race_course_date ON races (course_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_race_class ON races (race_class)`,
		`CREATE INDEX IF NOT EXISTS idx_horses_name ON horses (horse)`,
		`CREATE INDEX IF NOT EXISTS idx_trainers_name ON trainers (trainer)`,
		`CREATE INDEX IF NOT EXISTS idx_jockeys_name ON jockeys (jockey)`,
		`CREATE INDEX IF NOT EXISTS idx_owners_name ON owners (owner)`,
		`CREATE INDEX IF NOT EXISTS idx_runners_race ON runners (race_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runners_horse ON runners (horse_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runners_trainer ON runners (trainer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runners_jockey ON runners (jockey_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_race ON results (race_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_horse ON results (horse_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_position ON results (position)`,
		`CREATE INDEX IF NOT EXISTS idx_odds_runner ON odds (runner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_odds_race_horse ON odds (race_id, horse_id)`,
		`CREATE INDEX IF NOT EXISTS idx_odds_is_current ON odds (is_current)`,
		`CREATE INDEX IF NOT EXISTS idx_runner_medical_horse ON runner_medical (horse_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runner_quotes_horse ON runner_quotes (horse_id)`,
		`CREATE INDEX IF NOT EXISTS idx_api_cache_key ON api_cache (endpoint, params)`,
		`CREATE INDEX IF NOT EXISTS idx_api_cache_expires ON api_cache (expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_thread ON chat_history (thread_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_user ON chat_history (user_key)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	return nil
}
