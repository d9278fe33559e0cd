package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/conorwd/raceql/config"
	"github.com/conorwd/raceql/db"
	"github.com/conorwd/raceql/handlers"
	"github.com/conorwd/raceql/ingest"
	"github.com/conorwd/raceql/llm"
	applog "github.com/conorwd/raceql/logger"
	mw "github.com/conorwd/raceql/middleware"
	"github.com/conorwd/raceql/plancache"
	"github.com/conorwd/raceql/queryengine"
	"github.com/conorwd/raceql/racingapi"
	"github.com/conorwd/raceql/store"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	st := store.New(bdb, logger)

	var cache *plancache.Cache
	if addr := cfg.RedisAddr(); addr != "" {
		cache = plancache.New(plancache.NewRedisClient(addr, cfg.RedisPass, logger), cfg.APICacheTTL)
	}

	model := llm.New(cfg.OpenAIKey, cfg.OpenAIModel, logger)
	exec := queryengine.NewExecutor(st, logger)
	answerer := queryengine.NewAnswerer(model, exec, cache, logger)

	var syncer *ingest.Syncer
	if cfg.RacingAPIUsername != "" {
		api := racingapi.New(cfg.RacingAPIBaseURL, cfg.RacingAPIUsername, cfg.RacingAPIPassword, cfg.RacingAPITimeout, logger)
		engine := ingest.NewEngine(st, logger)
		syncer = ingest.NewSyncer(api, engine, st, logger, cfg.APICacheTTL)
	} else {
		logger.Warn("racing api credentials missing, sync endpoints disabled")
	}

	h := handlers.New(st, answerer, syncer, cfg.JWTKey(), logger)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/api/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(cfg.JWTKey()))
	api.POST("/chat", h.Chat)
	api.GET("/chat/history", h.ChatHistory)
	api.GET("/odds/race/:race_id", h.RaceOdds)
	api.GET("/odds/runner/:runner_id", h.RunnerOdds)
	api.GET("/odds/runner/:runner_id/history", h.OddsHistory)
	api.POST("/sync/:section", h.Sync)
	api.GET("/sync/logs", h.SyncLogs)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
