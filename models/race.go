package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Race represents a single race event at a course. Dates and times are kept
// as the upstream API supplies them: ISO date strings and HH:MM off times.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	RaceID        string    `bun:"race_id,pk" json:"race_id"`
	CourseID      string    `bun:"course_id,notnull" json:"course_id"`
	Date          string    `bun:"date,notnull" json:"date"`
	OffTime       string    `bun:"off_time,notnull" json:"off_time"`
	RaceName      string    `bun:"race_name,notnull" json:"race_name"`
	Distance      string    `bun:"distance,notnull" json:"distance"`
	DistanceF     string    `bun:"distance_f" json:"distance_f"`
	Region        string    `bun:"region,notnull" json:"region"`
	Pattern       string    `bun:"pattern" json:"pattern"`
	RaceClass     string    `bun:"race_class" json:"race_class"`
	Type          string    `bun:"type,notnull" json:"type"`
	AgeBand       string    `bun:"age_band" json:"age_band"`
	RatingBand    string    `bun:"rating_band" json:"rating_band"`
	Prize         string    `bun:"prize" json:"prize"`
	FieldSize     string    `bun:"field_size" json:"field_size"`
	Going         string    `bun:"going,notnull" json:"going"`
	GoingDetailed string    `bun:"going_detailed" json:"going_detailed"`
	Surface       string    `bun:"surface" json:"surface"`
	Jumps         string    `bun:"jumps" json:"jumps"`
	BigRace       bool      `bun:"big_race,notnull,default:false" json:"big_race"`
	IsAbandoned   bool      `bun:"is_abandoned,notnull,default:false" json:"is_abandoned"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`

	Course *Course `bun:"rel:belongs-to,join:course_id=course_id" json:"-"`
}
