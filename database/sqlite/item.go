package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erikbos/jellymirror-server/database/model"
)

// ItemIDs returns the IDs of all mirrored library items.
func (s *SqliteRepo) ItemIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.dbReadHandle.SelectContext(ctx, &ids,
		"SELECT id FROM jf_library_items"); err != nil {
		return nil, err
	}
	return ids, nil
}

// ItemIDsByLibrary returns the IDs of items owned by the given libraries.
func (s *SqliteRepo) ItemIDsByLibrary(ctx context.Context, libraryIDs []string) ([]string, error) {
	if len(libraryIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		"SELECT id FROM jf_library_items WHERE parent_id IN (?)", libraryIDs)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	if err := s.dbReadHandle.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

// Items returns all mirrored library items.
func (s *SqliteRepo) Items(ctx context.Context) ([]model.Item, error) {
	items := []model.Item{}
	if err := s.dbReadHandle.SelectContext(ctx, &items,
		"SELECT id, name, type, parent_id, year, community_rating, runtime_ticks, date_created "+
			"FROM jf_library_items"); err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertItems inserts or re-writes the given item rows.
func (s *SqliteRepo) UpsertItems(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(items, upsertChunkSize, func(batch []model.Item) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO jf_library_items (id, name, type, parent_id, year, `+
				`community_rating, runtime_ticks, date_created) `+
				`VALUES (:id, :name, :type, :parent_id, :year, `+
				`:community_rating, :runtime_ticks, :date_created) `+
				`ON CONFLICT(id) DO UPDATE SET name = excluded.name, `+
				`type = excluded.type, parent_id = excluded.parent_id, `+
				`year = excluded.year, community_rating = excluded.community_rating, `+
				`runtime_ticks = excluded.runtime_ticks, `+
				`date_created = excluded.date_created`, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk upsert jf_library_items: %w", err)
	}
	return tx.Commit()
}

// DeleteItems removes the items with the given IDs.
func (s *SqliteRepo) DeleteItems(ctx context.Context, ids []string) error {
	return s.bulkDelete(ctx, "jf_library_items", "id", ids)
}

// UpsertItemInfo inserts or re-writes media source rows of an item.
func (s *SqliteRepo) UpsertItemInfo(ctx context.Context, infos []model.ItemInfo) error {
	if len(infos) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(infos, upsertChunkSize, func(batch []model.ItemInfo) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO jf_item_info (id, item_id, path, container, size, bitrate) `+
				`VALUES (:id, :item_id, :path, :container, :size, :bitrate) `+
				`ON CONFLICT(id) DO UPDATE SET item_id = excluded.item_id, `+
				`path = excluded.path, container = excluded.container, `+
				`size = excluded.size, bitrate = excluded.bitrate`, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk upsert jf_item_info: %w", err)
	}
	return tx.Commit()
}
