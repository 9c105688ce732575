package sqlite

import (
	"context"
	"fmt"

	"github.com/erikbos/jellymirror-server/database/model"
)

// RemoveOrphans deletes season, episode and item info rows whose ancestor
// chain is broken: seasons of vanished series, episodes of vanished seasons
// or series, media source info of vanished items. Runs after every full
// sync, independent of whether any delete happened.
func (s *SqliteRepo) RemoveOrphans(ctx context.Context) error {
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cleanup := []string{
		`DELETE FROM jf_library_items WHERE parent_id NOT IN (SELECT id FROM jf_libraries)`,
		`DELETE FROM jf_library_seasons WHERE series_id NOT IN (SELECT id FROM jf_library_items)`,
		`DELETE FROM jf_library_episodes WHERE season_id NOT IN (SELECT id FROM jf_library_seasons)
 OR series_id NOT IN (SELECT id FROM jf_library_items)`,
		`DELETE FROM jf_item_info WHERE item_id NOT IN (SELECT id FROM jf_library_items)`,
	}
	for _, query := range cleanup {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("remove orphans: %w", err)
		}
	}
	return tx.Commit()
}

// RefreshLibraryStats recomputes per-library item, season and episode counts.
func (s *SqliteRepo) RefreshLibraryStats(ctx context.Context) error {
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jf_library_stats`); err != nil {
		return fmt.Errorf("refresh library stats: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO jf_library_stats (library_id, library_name, item_count, `+
			`season_count, episode_count, updated) `+
			`SELECT l.id, l.name, `+
			`(SELECT COUNT(*) FROM jf_library_items i WHERE i.parent_id = l.id), `+
			`(SELECT COUNT(*) FROM jf_library_seasons se `+
			` JOIN jf_library_items i ON i.id = se.series_id WHERE i.parent_id = l.id), `+
			`(SELECT COUNT(*) FROM jf_library_episodes e `+
			` JOIN jf_library_items i ON i.id = e.series_id WHERE i.parent_id = l.id), `+
			`datetime('now') `+
			`FROM jf_libraries l`)
	if err != nil {
		return fmt.Errorf("refresh library stats: %w", err)
	}
	return tx.Commit()
}

// LibraryStats returns the current per-library row counts.
func (s *SqliteRepo) LibraryStats(ctx context.Context) ([]model.LibraryStats, error) {
	stats := []model.LibraryStats{}
	if err := s.dbReadHandle.SelectContext(ctx, &stats,
		"SELECT library_id, library_name, item_count, season_count, episode_count, updated "+
			"FROM jf_library_stats ORDER BY library_name"); err != nil {
		return nil, err
	}
	return stats, nil
}

// RefreshActivityUserNames re-copies user names onto activity rows where the
// name drifted from the user table.
func (s *SqliteRepo) RefreshActivityUserNames(ctx context.Context) error {
	_, err := s.dbWriteHandle.ExecContext(ctx,
		`UPDATE jf_playback_activity SET user_name = `+
			`(SELECT u.name FROM jf_users u WHERE u.id = jf_playback_activity.user_id) `+
			`WHERE EXISTS (SELECT 1 FROM jf_users u WHERE u.id = jf_playback_activity.user_id `+
			`AND u.name <> jf_playback_activity.user_name)`)
	if err != nil {
		return fmt.Errorf("refresh activity user names: %w", err)
	}
	return nil
}
