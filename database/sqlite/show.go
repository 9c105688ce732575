package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erikbos/jellymirror-server/database/model"
)

// SeriesItems returns all mirrored items of type Series.
func (s *SqliteRepo) SeriesItems(ctx context.Context) ([]model.Item, error) {
	items := []model.Item{}
	if err := s.dbReadHandle.SelectContext(ctx, &items,
		"SELECT id, name, type, parent_id, year, community_rating, runtime_ticks, date_created "+
			"FROM jf_library_items WHERE type = ?", model.ItemTypeSeries); err != nil {
		return nil, err
	}
	return items, nil
}

// SeasonIDsBySeries returns the IDs of mirrored seasons of one series.
func (s *SqliteRepo) SeasonIDsBySeries(ctx context.Context, seriesID string) ([]string, error) {
	ids := []string{}
	if err := s.dbReadHandle.SelectContext(ctx, &ids,
		"SELECT id FROM jf_library_seasons WHERE series_id = ?", seriesID); err != nil {
		return nil, err
	}
	return ids, nil
}

// EpisodeIDsBySeasons returns the IDs of mirrored episodes whose season is
// in the given set.
func (s *SqliteRepo) EpisodeIDsBySeasons(ctx context.Context, seasonIDs []string) ([]string, error) {
	if len(seasonIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		"SELECT id FROM jf_library_episodes WHERE season_id IN (?)", seasonIDs)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	if err := s.dbReadHandle.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpsertSeasons inserts or re-writes the given season rows.
func (s *SqliteRepo) UpsertSeasons(ctx context.Context, seasons []model.Season) error {
	if len(seasons) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(seasons, upsertChunkSize, func(batch []model.Season) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO jf_library_seasons (id, name, index_number, series_id) `+
				`VALUES (:id, :name, :index_number, :series_id) `+
				`ON CONFLICT(id) DO UPDATE SET name = excluded.name, `+
				`index_number = excluded.index_number, `+
				`series_id = excluded.series_id`, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk upsert jf_library_seasons: %w", err)
	}
	return tx.Commit()
}

// DeleteSeasons removes the seasons with the given IDs.
func (s *SqliteRepo) DeleteSeasons(ctx context.Context, ids []string) error {
	return s.bulkDelete(ctx, "jf_library_seasons", "id", ids)
}

// UpsertEpisodes inserts or re-writes the given episode rows.
func (s *SqliteRepo) UpsertEpisodes(ctx context.Context, episodes []model.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(episodes, upsertChunkSize, func(batch []model.Episode) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO jf_library_episodes (id, name, index_number, `+
				`parent_index_number, season_id, series_id, runtime_ticks) `+
				`VALUES (:id, :name, :index_number, :parent_index_number, `+
				`:season_id, :series_id, :runtime_ticks) `+
				`ON CONFLICT(id) DO UPDATE SET name = excluded.name, `+
				`index_number = excluded.index_number, `+
				`parent_index_number = excluded.parent_index_number, `+
				`season_id = excluded.season_id, series_id = excluded.series_id, `+
				`runtime_ticks = excluded.runtime_ticks`, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk upsert jf_library_episodes: %w", err)
	}
	return tx.Commit()
}

// DeleteEpisodes removes the episodes with the given IDs.
func (s *SqliteRepo) DeleteEpisodes(ctx context.Context, ids []string) error {
	return s.bulkDelete(ctx, "jf_library_episodes", "id", ids)
}
