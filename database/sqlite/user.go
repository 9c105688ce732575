package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erikbos/jellymirror-server/database/model"
)

// UserIDs returns the IDs of all mirrored users.
func (s *SqliteRepo) UserIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.dbReadHandle.SelectContext(ctx, &ids,
		"SELECT id FROM jf_users"); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpsertUsers inserts or re-writes the given user rows.
func (s *SqliteRepo) UpsertUsers(ctx context.Context, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(users, upsertChunkSize, func(batch []model.User) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO jf_users (id, name, is_administrator, last_login, last_activity) `+
				`VALUES (:id, :name, :is_administrator, :last_login, :last_activity) `+
				`ON CONFLICT(id) DO UPDATE SET name = excluded.name, `+
				`is_administrator = excluded.is_administrator, `+
				`last_login = excluded.last_login, `+
				`last_activity = excluded.last_activity`, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk upsert jf_users: %w", err)
	}
	return tx.Commit()
}

// DeleteUsers removes the users with the given IDs.
func (s *SqliteRepo) DeleteUsers(ctx context.Context, ids []string) error {
	return s.bulkDelete(ctx, "jf_users", "id", ids)
}

// bulkDelete removes all rows of table whose column is in ids, in a single
// transaction.
func (s *SqliteRepo) bulkDelete(ctx context.Context, table, column string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.dbWriteHandle.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = chunked(ids, upsertChunkSize, func(batch []string) error {
		query, args, err := sqlx.In(
			fmt.Sprintf("DELETE FROM %s WHERE %s IN (?)", table, column), batch)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk delete %s: %w", table, err)
	}
	return tx.Commit()
}
