// cmd/sync/main.go
// Runs one full data refresh: courses, today's racecards, today's results,
// then a statistics recompute. Meant to be run from cron.
//
// Usage:
//
//	go run ./cmd/sync -tier standard
//	go run ./cmd/sync -entity courses -file ./raw-data
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/conorwd/raceql/config"
	bundb "github.com/conorwd/raceql/db"
	"github.com/conorwd/raceql/ingest"
	applog "github.com/conorwd/raceql/logger"
	"github.com/conorwd/raceql/racingapi"
	"github.com/conorwd/raceql/store"
)

func main() {
	tier := flag.String("tier", "standard", "racecards tier: basic, standard or pro")
	entity := flag.String("entity", "", "ingest a single staged entity instead of a full refresh")
	dir := flag.String("file", "", "staging directory holding raw JSON documents")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	flag.Parse()

	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db := bundb.Setup(cfg)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := bundb.CreateTables(ctx, db); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	st := store.New(db, logger)
	engine := ingest.NewEngine(st, logger)

	// Staged-file mode bypasses the upstream API entirely.
	if *entity != "" {
		if *dir == "" {
			logger.Fatal("-file is required with -entity")
		}
		out, err := engine.IngestFile(ctx, *dir, ingest.EntityType(*entity))
		if err != nil {
			logger.Fatal("staged ingest failed", zap.String("entity", *entity), zap.Error(err))
		}
		logger.Info("staged ingest done",
			zap.String("entity", *entity),
			zap.Int("records", out.Records),
			zap.Int("failures", len(out.Failures)))
		return
	}

	if cfg.RacingAPIUsername == "" {
		logger.Fatal("RACING_API_USERNAME must be set for a full refresh")
	}
	api := racingapi.New(cfg.RacingAPIBaseURL, cfg.RacingAPIUsername, cfg.RacingAPIPassword, cfg.RacingAPITimeout, logger)
	syncer := ingest.NewSyncer(api, engine, st, logger, cfg.APICacheTTL)

	outcomes := syncer.SyncDaily(ctx, racingapi.Tier(*tier))

	failed := 0
	for _, out := range outcomes {
		if out.Status() == "failed" {
			failed++
		}
		logger.Info("section finished",
			zap.String("endpoint", out.Endpoint),
			zap.String("status", out.Status()),
			zap.Int("records", out.Records))
	}
	if failed == len(outcomes) && len(outcomes) > 0 {
		os.Exit(1)
	}
}
