package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// ChatHistory is one append-only record of a user query and the serialized
// response it produced.
type ChatHistory struct {
	bun.BaseModel `bun:"table:chat_history,alias:ch"`

	ID        int64           `bun:"id,pk,autoincrement" json:"id"`
	ThreadID  string          `bun:"thread_id,notnull" json:"thread_id"`
	UserKey   string          `bun:"user_key,notnull" json:"user_key"`
	Query     string          `bun:"query,notnull" json:"query"`
	Response  json.RawMessage `bun:"response" json:"response"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
