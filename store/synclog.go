package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/conorwd/raceql/models"
)

// LogSync appends an audit row for one ingestion call. A failed log write
// is logged and swallowed; it must never fail the ingestion it describes.
func (s *Store) LogSync(ctx context.Context, endpoint, params, status, errMsg string, records int, start, end time.Time) {
	row := &models.ApiSyncLog{
		Endpoint:         endpoint,
		Parameters:       params,
		RecordsProcessed: records,
		Status:           status,
		ErrorMessage:     errMsg,
		StartTime:        start,
		EndTime:          end,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		s.log.Warn("sync log write failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
	}
}

// SyncLogs returns the newest audit rows.
func (s *Store) SyncLogs(ctx context.Context, limit int) ([]models.ApiSyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.ApiSyncLog
	err := s.db.NewSelect().Model(&rows).OrderExpr("id DESC").Limit(limit).Scan(ctx)
	return rows, err
}
