package sync

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/erikbos/jellymirror-server/database/model"
	"github.com/erikbos/jellymirror-server/idhash"
	"github.com/erikbos/jellymirror-server/jellyfin"
)

// FullSync runs one complete mirror pass in a fixed stage order: users,
// libraries, flat items, seasons/episodes, playback activity, orphan
// cleanup, library statistics, audit entry. A stage failure is logged and
// recorded but later stages still run, committed progress is never rolled
// back. The one exception is the initial library fetch: zero libraries (or
// a failed fetch) aborts the run before anything is mutated.
func (e *Engine) FullSync(ctx context.Context, trigger string) (*Report, error) {
	log.Printf("sync: starting full sync [%s]", trigger)
	report := &Report{
		Trigger: trigger,
		Started: time.Now(),
	}

	libraries, err := e.catalog.Libraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching libraries: %w", err)
	}
	if len(libraries) == 0 {
		return nil, ErrNoLibraries
	}

	filtered := make([]jellyfin.JFItem, 0, len(libraries))
	for _, library := range libraries {
		if slices.Contains(e.excludedLibraries, library.Id) {
			continue
		}
		filtered = append(filtered, library)
	}
	libraryIDs := make([]string, 0, len(filtered))
	for _, library := range filtered {
		libraryIDs = append(libraryIDs, library.Id)
	}

	report.runStage("users", func() (Stats, error) {
		return e.syncUsers(ctx)
	})
	report.runStage("libraries", func() (Stats, error) {
		return e.syncLibraries(ctx, filtered)
	})
	report.runStage("items", func() (Stats, error) {
		return e.syncItems(ctx, libraryIDs)
	})
	report.runStage("shows", func() (Stats, error) {
		return e.syncShows(ctx, libraryIDs)
	})
	report.runStage("activity", func() (Stats, error) {
		return e.syncActivity(ctx)
	})
	report.runStage("orphan cleanup", func() (Stats, error) {
		return Stats{}, e.repo.RemoveOrphans(ctx)
	})
	report.runStage("library stats", func() (Stats, error) {
		return Stats{}, e.repo.RefreshLibraryStats(ctx)
	})
	if e.index != nil {
		report.runStage("search index", func() (Stats, error) {
			items, err := e.repo.Items(ctx)
			if err != nil {
				return Stats{}, err
			}
			return Stats{}, e.index.IndexItems(ctx, items)
		})
	}

	report.Finished = time.Now()
	if err := e.repo.InsertSyncLog(ctx, model.SyncLog{
		ID:      idhash.NewRandomID(),
		Trigger: trigger,
		Task:    "full sync",
		Created: report.Finished,
	}); err != nil {
		log.Printf("sync: recording audit entry: %s", err)
	}

	log.Printf("sync: finished full sync [%s] in %s, %d of %d stages failed",
		trigger, report.Finished.Sub(report.Started), len(report.Failed()), len(report.Stages))
	return report, nil
}

// SyncActivity runs only the incremental activity ingestion, used by the
// manual activity trigger.
func (e *Engine) SyncActivity(ctx context.Context) (Stats, error) {
	return e.syncActivity(ctx)
}
