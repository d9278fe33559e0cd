package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ApiSyncLog is one append-only audit row per ingestion call.
type ApiSyncLog struct {
	bun.BaseModel `bun:"table:api_sync_log,alias:sl"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	Endpoint         string    `bun:"endpoint,notnull" json:"endpoint"`
	Parameters       string    `bun:"parameters" json:"parameters"`
	RecordsProcessed int       `bun:"records_processed" json:"records_processed"`
	Status           string    `bun:"status" json:"status"`
	ErrorMessage     string    `bun:"error_message" json:"error_message"`
	StartTime        time.Time `bun:"start_time,nullzero" json:"start_time"`
	EndTime          time.Time `bun:"end_time,nullzero" json:"end_time"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
