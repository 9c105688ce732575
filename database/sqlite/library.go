package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erikbos/jellymirror-server/database/model"
)

// LibraryIDs returns the IDs of all mirrored libraries.
func (s *SqliteRepo) LibraryIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.dbReadHandle.SelectContext(ctx, &ids,
		"SELECT id FROM jf_libraries"); err != nil {
		return nil, err
	}
	return ids, nil
}

// AnyLibraryID returns the ID of one mirrored library.
func (s *SqliteRepo) AnyLibraryID(ctx context.Context) (string, error) {
	var id string
	err := s.dbReadHandle.GetContext(ctx, &id,
		"SELECT id FROM jf_libraries LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpsertLibraries inserts or re-writes the given library rows.
func (s *SqliteRepo) UpsertLibraries(ctx context.Context, libraries []model.Library) error {
	if len(libraries) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(libraries, upsertChunkSize, func(batch []model.Library) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO jf_libraries (id, name, collection_type) `+
				`VALUES (:id, :name, :collection_type) `+
				`ON CONFLICT(id) DO UPDATE SET name = excluded.name, `+
				`collection_type = excluded.collection_type`, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk upsert jf_libraries: %w", err)
	}
	return tx.Commit()
}

// DeleteLibraries removes the libraries with the given IDs.
func (s *SqliteRepo) DeleteLibraries(ctx context.Context, ids []string) error {
	return s.bulkDelete(ctx, "jf_libraries", "id", ids)
}
