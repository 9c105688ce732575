package database

import (
	"context"
	"time"

	"github.com/erikbos/jellymirror-server/database/model"
)

type (
	// Repository is the full set of database operations the mirror needs.
	Repository interface {
		UserRepo
		LibraryRepo
		ItemRepo
		ShowRepo
		ActivityRepo
		MaintenanceRepo
		SyncLogRepo
	}

	// UserRepo defines user table operations.
	UserRepo interface {
		// UserIDs returns the IDs of all mirrored users.
		UserIDs(ctx context.Context) ([]string, error)
		// UpsertUsers inserts or re-writes the given user rows.
		UpsertUsers(ctx context.Context, users []model.User) error
		// DeleteUsers removes the users with the given IDs.
		DeleteUsers(ctx context.Context, ids []string) error
	}

	// LibraryRepo defines library table operations.
	LibraryRepo interface {
		// LibraryIDs returns the IDs of all mirrored libraries.
		LibraryIDs(ctx context.Context) ([]string, error)
		// AnyLibraryID returns the ID of one mirrored library,
		// model.ErrNotFound when the mirror holds none.
		AnyLibraryID(ctx context.Context) (string, error)
		UpsertLibraries(ctx context.Context, libraries []model.Library) error
		DeleteLibraries(ctx context.Context, ids []string) error
	}

	// ItemRepo defines library item table operations.
	ItemRepo interface {
		// ItemIDs returns the IDs of all mirrored library items.
		ItemIDs(ctx context.Context) ([]string, error)
		// ItemIDsByLibrary returns the IDs of items owned by the given libraries.
		ItemIDsByLibrary(ctx context.Context, libraryIDs []string) ([]string, error)
		// Items returns all mirrored library items.
		Items(ctx context.Context) ([]model.Item, error)
		UpsertItems(ctx context.Context, items []model.Item) error
		DeleteItems(ctx context.Context, ids []string) error
		// UpsertItemInfo inserts or re-writes media source rows of an item.
		UpsertItemInfo(ctx context.Context, infos []model.ItemInfo) error
	}

	// ShowRepo defines season and episode table operations.
	ShowRepo interface {
		// SeriesItems returns all mirrored items of type Series.
		SeriesItems(ctx context.Context) ([]model.Item, error)
		// SeasonIDsBySeries returns the IDs of mirrored seasons of one series.
		SeasonIDsBySeries(ctx context.Context, seriesID string) ([]string, error)
		// EpisodeIDsBySeasons returns the IDs of mirrored episodes whose
		// season is in the given set.
		EpisodeIDsBySeasons(ctx context.Context, seasonIDs []string) ([]string, error)
		UpsertSeasons(ctx context.Context, seasons []model.Season) error
		DeleteSeasons(ctx context.Context, ids []string) error
		UpsertEpisodes(ctx context.Context, episodes []model.Episode) error
		DeleteEpisodes(ctx context.Context, ids []string) error
	}

	// ActivityRepo defines playback activity ingestion operations.
	ActivityRepo interface {
		// OldestActivityTime returns the creation timestamp of the oldest
		// projected activity row, model.ErrNotFound when no activity exists.
		OldestActivityTime(ctx context.Context) (time.Time, error)
		// MaxActivitySequence returns the highest ingested raw row sequence
		// number, model.ErrNotFound when nothing has been ingested.
		MaxActivitySequence(ctx context.Context) (int64, error)
		// InsertActivityRaw appends raw playback reporting rows.
		InsertActivityRaw(ctx context.Context, rows []model.ActivityRaw) error
		// TransformActivity projects raw rows into the activity table.
		// Idempotent: already projected rows are skipped.
		TransformActivity(ctx context.Context) error
		// Activity returns projected activity rows, newest first.
		Activity(ctx context.Context, limit int) ([]model.Activity, error)
	}

	// MaintenanceRepo defines the idempotent store-side maintenance procedures.
	MaintenanceRepo interface {
		// RemoveOrphans deletes season, episode and item info rows whose
		// ancestor chain is broken.
		RemoveOrphans(ctx context.Context) error
		// RefreshLibraryStats recomputes per-library row counts.
		RefreshLibraryStats(ctx context.Context) error
		// LibraryStats returns the current per-library row counts.
		LibraryStats(ctx context.Context) ([]model.LibraryStats, error)
		// RefreshActivityUserNames re-copies user names onto activity rows
		// where the name drifted from the user table.
		RefreshActivityUserNames(ctx context.Context) error
	}

	// SyncLogRepo defines sync audit log operations.
	SyncLogRepo interface {
		InsertSyncLog(ctx context.Context, entry model.SyncLog) error
		// SyncLogs returns recent audit entries, newest first.
		SyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error)
	}
)
