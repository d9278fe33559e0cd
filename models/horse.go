package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Horse represents a racehorse. Pedigree and demographic fields fill in over
// time as richer detail arrives from the racecard, results and pro endpoints.
type Horse struct {
	bun.BaseModel `bun:"table:horses,alias:h"`

	HorseID       string    `bun:"horse_id,pk" json:"horse_id"`
	Horse         string    `bun:"horse,notnull" json:"horse"`
	DOB           string    `bun:"dob" json:"dob"`
	Age           string    `bun:"age" json:"age"`
	Sex           string    `bun:"sex" json:"sex"`
	SexCode       string    `bun:"sex_code" json:"sex_code"`
	Colour        string    `bun:"colour" json:"colour"`
	Region        string    `bun:"region" json:"region"`
	Breeder       string    `bun:"breeder" json:"breeder"`
	Dam           string    `bun:"dam" json:"dam"`
	DamID         string    `bun:"dam_id" json:"dam_id"`
	DamRegion     string    `bun:"dam_region" json:"dam_region"`
	Sire          string    `bun:"sire" json:"sire"`
	SireID        string    `bun:"sire_id" json:"sire_id"`
	SireRegion    string    `bun:"sire_region" json:"sire_region"`
	Damsire       string    `bun:"damsire" json:"damsire"`
	DamsireID     string    `bun:"damsire_id" json:"damsire_id"`
	DamsireRegion string    `bun:"damsire_region" json:"damsire_region"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
