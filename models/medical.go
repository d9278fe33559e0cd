package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RunnerMedical is an append-only medical event for a horse.
type RunnerMedical struct {
	bun.BaseModel `bun:"table:runner_medical,alias:rm"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	HorseID   string    `bun:"horse_id,notnull" json:"horse_id"`
	Date      string    `bun:"date" json:"date"`
	Type      string    `bun:"type" json:"type"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

// RunnerQuote is an append-only press quote about a horse.
type RunnerQuote struct {
	bun.BaseModel `bun:"table:runner_quotes,alias:rq"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	HorseID   string    `bun:"horse_id,notnull" json:"horse_id"`
	Date      string    `bun:"date" json:"date"`
	Race      string    `bun:"race" json:"race"`
	Course    string    `bun:"course" json:"course"`
	CourseID  string    `bun:"course_id" json:"course_id"`
	DistanceF string    `bun:"distance_f" json:"distance_f"`
	Quote     string    `bun:"quote" json:"quote"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
