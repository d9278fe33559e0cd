// Package store is the persistence layer. A Store wraps a bun.DB handle and
// is passed explicitly to every component that needs it; nothing here holds
// global session state.
package store

import (
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Store gives repository-style access to the racing schema.
type Store struct {
	db  *bun.DB
	log *zap.Logger
	now func() time.Time
}

// New creates a Store around an open database handle.
func New(db *bun.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log, now: time.Now}
}

// WithClock returns a copy of the Store using the given clock. Tests use
// this to simulate cache expiry.
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

// DB exposes the underlying handle for query building.
func (s *Store) DB() *bun.DB {
	return s.db
}
