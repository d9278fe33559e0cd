package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Trainer holds trainer name and yard location.
type Trainer struct {
	bun.BaseModel `bun:"table:trainers,alias:t"`

	TrainerID       string    `bun:"trainer_id,pk" json:"trainer_id"`
	Trainer         string    `bun:"trainer,notnull" json:"trainer"`
	TrainerLocation string    `bun:"trainer_location" json:"trainer_location"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
