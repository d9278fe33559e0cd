package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Odds is one bookmaker quote for a runner at a point in time. Rows are
// never updated in place: a new quote inserts a fresh row and flips the
// previous current row for the same (race, horse, bookmaker) to false.
type Odds struct {
	bun.BaseModel `bun:"table:odds,alias:od"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	RaceID     string    `bun:"race_id,notnull" json:"race_id"`
	HorseID    string    `bun:"horse_id,notnull" json:"horse_id"`
	RunnerID   string    `bun:"runner_id,notnull" json:"runner_id"`
	Bookmaker  string    `bun:"bookmaker,notnull" json:"bookmaker"`
	Fractional string    `bun:"fractional,notnull" json:"fractional"`
	Decimal    string    `bun:"decimal,notnull" json:"decimal"`
	EwPlaces   string    `bun:"ew_places" json:"ew_places"`
	EwDenom    string    `bun:"ew_denom" json:"ew_denom"`
	Updated    string    `bun:"updated" json:"updated"`
	IsCurrent  bool      `bun:"is_current,notnull,default:true" json:"is_current"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

// Quote carries the bookmaker fields of a single odds update.
type Quote struct {
	Fractional string `json:"fractional"`
	Decimal    string `json:"decimal"`
	EwPlaces   string `json:"ew_places"`
	EwDenom    string `json:"ew_denom"`
	Updated    string `json:"updated"`
}
