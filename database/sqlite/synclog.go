package sqlite

import (
	"context"
	"fmt"

	"github.com/erikbos/jellymirror-server/database/model"
)

// InsertSyncLog records one completed sync run.
func (s *SqliteRepo) InsertSyncLog(ctx context.Context, entry model.SyncLog) error {
	_, err := s.dbWriteHandle.NamedExecContext(ctx,
		`INSERT INTO jf_sync_log (id, trigger_type, task, created) `+
			`VALUES (:id, :trigger_type, :task, :created)`, entry)
	if err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}

// SyncLogs returns recent audit entries, newest first.
func (s *SqliteRepo) SyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	entries := []model.SyncLog{}
	if err := s.dbReadHandle.SelectContext(ctx, &entries,
		"SELECT id, trigger_type, task, created FROM jf_sync_log "+
			"ORDER BY created DESC LIMIT ?", limit); err != nil {
		return nil, err
	}
	return entries, nil
}
