package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Result holds the outcome of a runner once the race has run. Positions,
// prices and ratings stay as upstream text; the query executor casts them
// when a numeric comparison is asked for.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ResultID  string    `bun:"result_id,pk" json:"result_id"`
	RaceID    string    `bun:"race_id,notnull" json:"race_id"`
	HorseID   string    `bun:"horse_id,notnull" json:"horse_id"`
	JockeyID  string    `bun:"jockey_id" json:"jockey_id"`
	TrainerID string    `bun:"trainer_id" json:"trainer_id"`
	OwnerID   string    `bun:"owner_id" json:"owner_id"`
	SP        string    `bun:"sp" json:"sp"`
	SPDec     string    `bun:"sp_dec" json:"sp_dec"`
	Number    string    `bun:"number" json:"number"`
	Position  string    `bun:"position" json:"position"`
	Draw      string    `bun:"draw" json:"draw"`
	Btn       string    `bun:"btn" json:"btn"`
	OvrBtn    string    `bun:"ovr_btn" json:"ovr_btn"`
	Age       string    `bun:"age" json:"age"`
	Sex       string    `bun:"sex" json:"sex"`
	Weight    string    `bun:"weight" json:"weight"`
	WeightLbs string    `bun:"weight_lbs" json:"weight_lbs"`
	Headgear  string    `bun:"headgear" json:"headgear"`
	Time      string    `bun:"time" json:"time"`
	OrRating  string    `bun:"or_rating" json:"or_rating"`
	RPR       string    `bun:"rpr" json:"rpr"`
	TSR       string    `bun:"tsr" json:"tsr"`
	Prize     string    `bun:"prize" json:"prize"`
	Comment   string    `bun:"comment" json:"comment"`
	SilkURL   string    `bun:"silk_url" json:"silk_url"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`

	Race  *Race  `bun:"rel:belongs-to,join:race_id=race_id" json:"-"`
	Horse *Horse `bun:"rel:belongs-to,join:horse_id=horse_id" json:"-"`
}
