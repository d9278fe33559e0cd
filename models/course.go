package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Course represents a racecourse.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	CourseID   string    `bun:"course_id,pk" json:"course_id"`
	Course     string    `bun:"course,notnull" json:"course"`
	RegionCode string    `bun:"region_code,notnull" json:"region_code"`
	Region     string    `bun:"region,notnull" json:"region"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
