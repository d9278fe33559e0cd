package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TrainerStatistics is a derived aggregate over a trainer's results for a
// period (e.g. 14_days, season, course). Recomputed and upserted whole.
type TrainerStatistics struct {
	bun.BaseModel `bun:"table:trainer_statistics,alias:tst"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	TrainerID      string    `bun:"trainer_id,notnull" json:"trainer_id"`
	PeriodType     string    `bun:"period_type,notnull" json:"period_type"`
	PeriodValue    string    `bun:"period_value" json:"period_value"`
	Runs           int       `bun:"runs,notnull,default:0" json:"runs"`
	Wins           int       `bun:"wins,notnull,default:0" json:"wins"`
	Places         int       `bun:"places,notnull,default:0" json:"places"`
	WinPercentage  float64   `bun:"win_percentage,notnull,default:0" json:"win_percentage"`
	LastCalculated time.Time `bun:"last_calculated,nullzero,notnull,default:current_timestamp" json:"-"`
}

// JockeyStatistics mirrors TrainerStatistics for jockey rides.
type JockeyStatistics struct {
	bun.BaseModel `bun:"table:jockey_statistics,alias:jst"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	JockeyID       string    `bun:"jockey_id,notnull" json:"jockey_id"`
	PeriodType     string    `bun:"period_type,notnull" json:"period_type"`
	PeriodValue    string    `bun:"period_value" json:"period_value"`
	Rides          int       `bun:"rides,notnull,default:0" json:"rides"`
	Wins           int       `bun:"wins,notnull,default:0" json:"wins"`
	Places         int       `bun:"places,notnull,default:0" json:"places"`
	WinPercentage  float64   `bun:"win_percentage,notnull,default:0" json:"win_percentage"`
	LastCalculated time.Time `bun:"last_calculated,nullzero,notnull,default:current_timestamp" json:"-"`
}

// HorseStatistics aggregates a horse's record by a dimension such as course,
// going, distance or class. Unique per (horse_id, stat_type, stat_value).
type HorseStatistics struct {
	bun.BaseModel `bun:"table:horse_statistics,alias:hst"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	HorseID        string    `bun:"horse_id,notnull,unique:uq_horse_stat" json:"horse_id"`
	StatType       string    `bun:"stat_type,notnull,unique:uq_horse_stat" json:"stat_type"`
	StatValue      string    `bun:"stat_value,notnull,unique:uq_horse_stat" json:"stat_value"`
	Runs           int       `bun:"runs,notnull,default:0" json:"runs"`
	Wins           int       `bun:"wins,notnull,default:0" json:"wins"`
	Places         int       `bun:"places,notnull,default:0" json:"places"`
	WinPercentage  float64   `bun:"win_percentage,notnull,default:0" json:"win_percentage"`
	BestPosition   string    `bun:"best_position" json:"best_position"`
	LastCalculated time.Time `bun:"last_calculated,nullzero,notnull,default:current_timestamp" json:"-"`
}
