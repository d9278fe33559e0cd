// Package handlers exposes the chat and data surface over echo.
package handlers

import (
	"go.uber.org/zap"

	"github.com/conorwd/raceql/ingest"
	"github.com/conorwd/raceql/queryengine"
	"github.com/conorwd/raceql/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	store    *store.Store
	answerer *queryengine.Answerer
	syncer   *ingest.Syncer
	JWTKey   []byte
	log      *zap.Logger
}

// New creates a Handler with its collaborators. syncer may be nil when the
// server runs without upstream API credentials.
func New(st *store.Store, answerer *queryengine.Answerer, syncer *ingest.Syncer, jwtKey []byte, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: st, answerer: answerer, syncer: syncer, JWTKey: jwtKey, log: log}
}
