package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Owner represents a horse owner.
type Owner struct {
	bun.BaseModel `bun:"table:owners,alias:o"`

	OwnerID   string    `bun:"owner_id,pk" json:"owner_id"`
	Owner     string    `bun:"owner,notnull" json:"owner"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
