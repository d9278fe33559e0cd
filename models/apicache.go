package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// APICache stores one serialized upstream response keyed by endpoint and
// canonicalized parameters, with an absolute expiry.
type APICache struct {
	bun.BaseModel `bun:"table:api_cache,alias:ac"`

	ID           int64           `bun:"id,pk,autoincrement" json:"id"`
	Endpoint     string          `bun:"endpoint,notnull" json:"endpoint"`
	Params       string          `bun:"params,notnull" json:"params"`
	ResponseData json.RawMessage `bun:"response_data,notnull" json:"response_data"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	ExpiresAt    time.Time       `bun:"expires_at,notnull" json:"expires_at"`
}
