package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorwd/raceql/models"
)

// SaveChatHistory appends one query/response pair for a thread.
func (s *Store) SaveChatHistory(ctx context.Context, threadID, userKey, query string, response interface{}) error {
	payload, err := json.Marshal(response)
	if err != nil {
		payload, _ = json.Marshal(map[string]string{"content": fmt.Sprint(response), "type": "unknown"})
	}

	row := &models.ChatHistory{
		ThreadID: threadID,
		UserKey:  userKey,
		Query:    query,
		Response: payload,
	}
	_, err = s.db.NewInsert().Model(row).Exec(ctx)
	return err
}

// RecentChatHistory returns the newest entries, optionally narrowed by
// thread and/or user.
func (s *Store) RecentChatHistory(ctx context.Context, threadID, userKey string, limit int) ([]models.ChatHistory, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []models.ChatHistory
	q := s.db.NewSelect().Model(&rows)
	if threadID != "" {
		q = q.Where("thread_id = ?", threadID)
	}
	if userKey != "" {
		q = q.Where("user_key = ?", userKey)
	}
	err := q.OrderExpr("id DESC").Limit(limit).Scan(ctx)
	return rows, err
}

// UserChatCount returns how many chat entries a user has. Failures count as
// zero; this feeds a usage display, not billing.
func (s *Store) UserChatCount(ctx context.Context, userKey string) int {
	if userKey == "" {
		return 0
	}
	n, err := s.db.NewSelect().
		Model((*models.ChatHistory)(nil)).
		Where("user_key = ?", userKey).
		Count(ctx)
	if err != nil {
		s.log.Warn("chat count failed", zap.Error(err))
		return 0
	}
	return n
}
