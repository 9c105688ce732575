package model

import (
	"errors"
	"time"
)

var (
	ErrNoConfiguration = errors.New("database filename not set")
	ErrNotFound        = errors.New("not found")
)

// User represents a mirrored remote user.
type User struct {
	// ID is the identifier assigned by the remote server.
	ID string `db:"id"`
	// Name is the display name of the user.
	Name string `db:"name"`
	// IsAdministrator indicates the user has the admin policy on the remote server.
	IsAdministrator bool `db:"is_administrator"`
	// LastLogin is the last time the user logged in on the remote server.
	LastLogin time.Time `db:"last_login"`
	// LastActivity is the last time the user was active on the remote server.
	LastActivity time.Time `db:"last_activity"`
}

// Library represents a mirrored remote media folder.
type Library struct {
	// ID is the identifier assigned by the remote server.
	ID string `db:"id"`
	// Name of the library, e.g. "Movies".
	Name string `db:"name"`
	// CollectionType of the library, e.g. "movies", "tvshows", "music".
	CollectionType string `db:"collection_type"`
}

// Item types as reported by the remote server.
const (
	ItemTypeMovie   = "Movie"
	ItemTypeAudio   = "Audio"
	ItemTypeSeries  = "Series"
	ItemTypeSeason  = "Season"
	ItemTypeEpisode = "Episode"
)

// Item represents a mirrored top-level library item: a movie, an audio
// track or a series.
type Item struct {
	ID string `db:"id"`
	// Name of the item.
	Name string `db:"name"`
	// Type is one of ItemTypeMovie, ItemTypeAudio, ItemTypeSeries.
	Type string `db:"type"`
	// ParentID is the ID of the library owning this item.
	ParentID string `db:"parent_id"`
	// Year the item was produced.
	Year int `db:"year"`
	// CommunityRating of the item, 0 if unknown.
	CommunityRating float32 `db:"community_rating"`
	// RuntimeTicks is the runtime in remote server ticks (100ns units).
	RuntimeTicks int64 `db:"runtime_ticks"`
	// DateCreated is when the item was added on the remote server.
	DateCreated time.Time `db:"date_created"`
}

// Season represents a mirrored season of a series.
type Season struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	// IndexNumber is the season number.
	IndexNumber int `db:"index_number"`
	// SeriesID is the ID of the owning series item.
	SeriesID string `db:"series_id"`
}

// Episode represents a mirrored episode of a season.
type Episode struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	// IndexNumber is the episode number within the season.
	IndexNumber int `db:"index_number"`
	// ParentIndexNumber is the season number.
	ParentIndexNumber int `db:"parent_index_number"`
	// SeasonID is the ID of the owning season.
	SeasonID string `db:"season_id"`
	// SeriesID is denormalized for per-series filtering.
	SeriesID string `db:"series_id"`
	// RuntimeTicks is the runtime in remote server ticks (100ns units).
	RuntimeTicks int64 `db:"runtime_ticks"`
}

// ItemInfo holds playback/technical metadata of a media source of an item.
// Fetched on demand during single-item re-sync, not part of the bulk sync.
type ItemInfo struct {
	ID string `db:"id"`
	// ItemID is the ID of the library item this source belongs to.
	ItemID string `db:"item_id"`
	// Path of the media file on the remote server.
	Path string `db:"path"`
	// Container format, e.g. "mkv".
	Container string `db:"container"`
	// Size of the media file in bytes.
	Size int64 `db:"size"`
	// Bitrate of the media file.
	Bitrate int64 `db:"bitrate"`
}

// ActivityRaw is one row of the remote playback reporting log. Rows are
// append-only: once ingested they are never updated or deleted.
type ActivityRaw struct {
	// RowID is the remote log's monotonically increasing row sequence number.
	RowID int64 `db:"row_id"`
	// DateCreated is the remote creation timestamp of the log row.
	DateCreated time.Time `db:"date_created"`
	UserID      string    `db:"user_id"`
	ItemID      string    `db:"item_id"`
	ItemType    string    `db:"item_type"`
	ItemName    string    `db:"item_name"`
	// PlaybackMethod, e.g. "DirectPlay" or "Transcode".
	PlaybackMethod string `db:"playback_method"`
	ClientName     string `db:"client_name"`
	DeviceName     string `db:"device_name"`
	// PlayDuration in seconds.
	PlayDuration int64 `db:"play_duration"`
}

// Activity is the queryable projection of ActivityRaw, produced by the
// activity transform after each ingestion batch.
type Activity struct {
	ID             string    `db:"id"`
	RowID          int64     `db:"row_id"`
	UserID         string    `db:"user_id"`
	UserName       string    `db:"user_name"`
	ItemID         string    `db:"item_id"`
	ItemType       string    `db:"item_type"`
	ItemName       string    `db:"item_name"`
	PlaybackMethod string    `db:"playback_method"`
	ClientName     string    `db:"client_name"`
	DeviceName     string    `db:"device_name"`
	PlayDuration   int64     `db:"play_duration"`
	DateCreated    time.Time `db:"date_created"`
	DateInserted   time.Time `db:"date_inserted"`
}

// LibraryStats holds per-library row counts, refreshed after each full sync.
type LibraryStats struct {
	LibraryID    string    `db:"library_id"`
	LibraryName  string    `db:"library_name"`
	ItemCount    int       `db:"item_count"`
	SeasonCount  int       `db:"season_count"`
	EpisodeCount int       `db:"episode_count"`
	Updated      time.Time `db:"updated"`
}

// SyncLog is the audit record of one completed sync run.
type SyncLog struct {
	ID string `db:"id"`
	// Trigger indicates what started the run, e.g. "scheduled" or "manual".
	Trigger string `db:"trigger_type"`
	// Task is the name of the task that ran, e.g. "full sync".
	Task    string    `db:"task"`
	Created time.Time `db:"created"`
}
