package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RunnerKey builds the composite runner/result key for a race and horse.
func RunnerKey(raceID, horseID string) string {
	return raceID + "_" + horseID
}

// Runner is a horse's scheduled participation in one race. The primary key
// encodes (race_id, horse_id) and a unique constraint backs the pairing.
// Ratings and weights are kept as strings exactly as the API returns them.
type Runner struct {
	bun.BaseModel `bun:"table:runners,alias:rn"`

	RunnerID       string    `bun:"runner_id,pk" json:"runner_id"`
	RaceID         string    `bun:"race_id,notnull" json:"race_id"`
	HorseID        string    `bun:"horse_id,notnull" json:"horse_id"`
	JockeyID       string    `bun:"jockey_id" json:"jockey_id"`
	TrainerID      string    `bun:"trainer_id" json:"trainer_id"`
	OwnerID        string    `bun:"owner_id" json:"owner_id"`
	Number         string    `bun:"number" json:"number"`
	Draw           string    `bun:"draw" json:"draw"`
	Headgear       string    `bun:"headgear" json:"headgear"`
	HeadgearRun    string    `bun:"headgear_run" json:"headgear_run"`
	WindSurgery    string    `bun:"wind_surgery" json:"wind_surgery"`
	WindSurgeryRun string    `bun:"wind_surgery_run" json:"wind_surgery_run"`
	Lbs            string    `bun:"lbs" json:"lbs"`
	Ofr            string    `bun:"ofr" json:"ofr"`
	RPR            string    `bun:"rpr" json:"rpr"`
	TS             string    `bun:"ts" json:"ts"`
	LastRun        string    `bun:"last_run" json:"last_run"`
	Form           string    `bun:"form" json:"form"`
	Comment        string    `bun:"comment" json:"comment"`
	Spotlight      string    `bun:"spotlight" json:"spotlight"`
	SilkURL        string    `bun:"silk_url" json:"silk_url"`
	TrainerRTF     string    `bun:"trainer_rtf" json:"trainer_rtf"`
	IsNonRunner    bool      `bun:"is_non_runner,notnull,default:false" json:"is_non_runner"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`

	Race  *Race  `bun:"rel:belongs-to,join:race_id=race_id" json:"-"`
	Horse *Horse `bun:"rel:belongs-to,join:horse_id=horse_id" json:"-"`
}
