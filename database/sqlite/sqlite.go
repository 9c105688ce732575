package sqlite

import (
	"runtime"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/erikbos/jellymirror-server/database/model"
)

type SqliteRepo struct {
	// Read db handle
	dbReadHandle *sqlx.DB
	// Handle specfically for writes
	dbWriteHandle *sqlx.DB
}

// ConfigFile holds configuration options
type ConfigFile struct {
	Filename string `yaml:"filename" mapstructure:"filename"`
}

// New initializes a sqlite database and creates schema if necssary.
func New(o *ConfigFile) (*SqliteRepo, error) {
	if o == nil || o.Filename == "" {
		return nil, model.ErrNoConfiguration
	}

	dbHandle, err := sqlx.Connect("sqlite3", o.Filename)
	if err != nil {
		return nil, err
	}
	dbHandle.SetMaxOpenConns(max(4, runtime.NumCPU()))

	writeDB, err := sqlx.Connect("sqlite3", o.Filename)
	if err != nil {
		return nil, err
	}
	// sqlite needs to have a single writer
	writeDB.SetMaxOpenConns(1)

	if err := dbInitSchema(writeDB); err != nil {
		return nil, err
	}

	return &SqliteRepo{
		dbReadHandle:  dbHandle,
		dbWriteHandle: writeDB,
	}, nil
}

// upsertChunkSize limits the amount of rows per bulk statement so we
// stay well below sqlite's bound parameter limit.
const upsertChunkSize = 500

// chunked calls fn for successive slices of at most size elements.
func chunked[E any](rows []E, size int, fn func([]E) error) error {
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
