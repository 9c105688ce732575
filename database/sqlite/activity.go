package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erikbos/jellymirror-server/database/model"
)

// OldestActivityTime returns the creation timestamp of the oldest projected
// activity row. MIN() would lose the column's declared type and come back
// as a bare string, so we select the column itself.
func (s *SqliteRepo) OldestActivityTime(ctx context.Context) (time.Time, error) {
	var oldest time.Time
	err := s.dbReadHandle.GetContext(ctx, &oldest,
		"SELECT date_created FROM jf_playback_activity ORDER BY date_created LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, model.ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return oldest, nil
}

// MaxActivitySequence returns the highest ingested raw row sequence number.
func (s *SqliteRepo) MaxActivitySequence(ctx context.Context) (int64, error) {
	var maxRowID sql.NullInt64
	err := s.dbReadHandle.GetContext(ctx, &maxRowID,
		"SELECT MAX(row_id) FROM jf_playback_reporting_raw")
	if err != nil {
		return 0, err
	}
	if !maxRowID.Valid {
		return 0, model.ErrNotFound
	}
	return maxRowID.Int64, nil
}

// InsertActivityRaw appends raw playback reporting rows. Rows are never
// updated after ingestion, a conflicting sequence number is a re-ingest
// of a known row and is skipped.
func (s *SqliteRepo) InsertActivityRaw(ctx context.Context, rows []model.ActivityRaw) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(rows, upsertChunkSize, func(batch []model.ActivityRaw) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT OR IGNORE INTO jf_playback_reporting_raw (row_id, date_created, `+
				`user_id, item_id, item_type, item_name, playback_method, `+
				`client_name, device_name, play_duration) `+
				`VALUES (:row_id, :date_created, :user_id, :item_id, :item_type, `+
				`:item_name, :playback_method, :client_name, :device_name, `+
				`:play_duration)`, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk insert jf_playback_reporting_raw: %w", err)
	}
	return tx.Commit()
}

// TransformActivity projects raw playback reporting rows into the activity
// table. Raw rows already projected are skipped, so the transform is safe
// to invoke after every ingestion batch, including empty ones.
func (s *SqliteRepo) TransformActivity(ctx context.Context) error {
	_, err := s.dbWriteHandle.ExecContext(ctx,
		`INSERT INTO jf_playback_activity (id, row_id, user_id, user_name, `+
			`item_id, item_type, item_name, playback_method, client_name, `+
			`device_name, play_duration, date_created, date_inserted) `+
			`SELECT lower(hex(randomblob(16))), r.row_id, r.user_id, `+
			`COALESCE(u.name, ''), r.item_id, r.item_type, r.item_name, `+
			`r.playback_method, r.client_name, r.device_name, r.play_duration, `+
			`r.date_created, datetime('now') `+
			`FROM jf_playback_reporting_raw r `+
			`LEFT JOIN jf_users u ON u.id = r.user_id `+
			`WHERE r.row_id NOT IN (SELECT row_id FROM jf_playback_activity)`)
	if err != nil {
		return fmt.Errorf("transform playback activity: %w", err)
	}
	return nil
}

// Activity returns projected activity rows, newest first.
func (s *SqliteRepo) Activity(ctx context.Context, limit int) ([]model.Activity, error) {
	rows := []model.Activity{}
	if err := s.dbReadHandle.SelectContext(ctx, &rows,
		"SELECT id, row_id, user_id, user_name, item_id, item_type, item_name, "+
			"playback_method, client_name, device_name, play_duration, "+
			"date_created, date_inserted "+
			"FROM jf_playback_activity ORDER BY date_created DESC LIMIT ?", limit); err != nil {
		return nil, err
	}
	return rows, nil
}
