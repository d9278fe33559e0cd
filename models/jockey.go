package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Jockey represents a jockey.
type Jockey struct {
	bun.BaseModel `bun:"table:jockeys,alias:j"`

	JockeyID  string    `bun:"jockey_id,pk" json:"jockey_id"`
	Jockey    string    `bun:"jockey,notnull" json:"jockey"`
	FirstName string    `bun:"first_name" json:"first_name"`
	LastName  string    `bun:"last_name" json:"last_name"`
	Type      string    `bun:"type" json:"type"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
