package sqlite

import (
	"log"

	"github.com/jmoiron/sqlx"
)

func dbInitSchema(d *sqlx.DB) error {
	schema := []string{
		// This is needed to improve concurrent reads and writes.
		`PRAGMA journal_mode = WAL;`,

		`CREATE TABLE IF NOT EXISTS jf_users (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL,
is_administrator BOOLEAN NOT NULL DEFAULT 0,
last_login DATETIME,
last_activity DATETIME);`,

		`CREATE TABLE IF NOT EXISTS jf_libraries (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL,
collection_type TEXT NOT NULL);`,

		`CREATE TABLE IF NOT EXISTS jf_library_items (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL,
type TEXT NOT NULL,
parent_id TEXT NOT NULL,
year INTEGER,
community_rating REAL,
runtime_ticks INTEGER,
date_created DATETIME);`,

		`CREATE INDEX IF NOT EXISTS library_items_parent_idx ON jf_library_items (parent_id);`,
		`CREATE INDEX IF NOT EXISTS library_items_type_idx ON jf_library_items (type);`,

		`CREATE TABLE IF NOT EXISTS jf_library_seasons (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL,
index_number INTEGER,
series_id TEXT NOT NULL);`,

		`CREATE INDEX IF NOT EXISTS library_seasons_series_idx ON jf_library_seasons (series_id);`,

		`CREATE TABLE IF NOT EXISTS jf_library_episodes (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL,
index_number INTEGER,
parent_index_number INTEGER,
season_id TEXT NOT NULL,
series_id TEXT NOT NULL,
runtime_ticks INTEGER);`,

		`CREATE INDEX IF NOT EXISTS library_episodes_season_idx ON jf_library_episodes (season_id);`,
		`CREATE INDEX IF NOT EXISTS library_episodes_series_idx ON jf_library_episodes (series_id);`,

		`CREATE TABLE IF NOT EXISTS jf_item_info (
id TEXT NOT NULL PRIMARY KEY,
item_id TEXT NOT NULL,
path TEXT,
container TEXT,
size INTEGER,
bitrate INTEGER);`,

		`CREATE INDEX IF NOT EXISTS item_info_item_idx ON jf_item_info (item_id);`,

		`CREATE TABLE IF NOT EXISTS jf_playback_reporting_raw (
row_id INTEGER NOT NULL PRIMARY KEY,
date_created DATETIME NOT NULL,
user_id TEXT,
item_id TEXT,
item_type TEXT,
item_name TEXT,
playback_method TEXT,
client_name TEXT,
device_name TEXT,
play_duration INTEGER);`,

		`CREATE TABLE IF NOT EXISTS jf_playback_activity (
id TEXT NOT NULL PRIMARY KEY,
row_id INTEGER NOT NULL UNIQUE,
user_id TEXT,
user_name TEXT,
item_id TEXT,
item_type TEXT,
item_name TEXT,
playback_method TEXT,
client_name TEXT,
device_name TEXT,
play_duration INTEGER,
date_created DATETIME NOT NULL,
date_inserted DATETIME NOT NULL);`,

		`CREATE INDEX IF NOT EXISTS playback_activity_user_idx ON jf_playback_activity (user_id);`,
		`CREATE INDEX IF NOT EXISTS playback_activity_created_idx ON jf_playback_activity (date_created);`,

		`CREATE TABLE IF NOT EXISTS jf_library_stats (
library_id TEXT NOT NULL PRIMARY KEY,
library_name TEXT NOT NULL,
item_count INTEGER NOT NULL,
season_count INTEGER NOT NULL,
episode_count INTEGER NOT NULL,
updated DATETIME NOT NULL);`,

		`CREATE TABLE IF NOT EXISTS jf_sync_log (
id TEXT NOT NULL PRIMARY KEY,
trigger_type TEXT NOT NULL,
task TEXT NOT NULL,
created DATETIME NOT NULL);`,
	}

	for _, query := range schema {
		if _, err := d.Exec(query); err != nil {
			log.Printf("dbInitSchema error: %s\n", err)
			return err
		}
	}
	return nil
}
