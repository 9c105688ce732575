package sync

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/erikbos/jellymirror-server/database"
	"github.com/erikbos/jellymirror-server/database/model"
	"github.com/erikbos/jellymirror-server/jellyfin"
)

var (
	// ErrNoLibraries indicates the remote returned zero libraries. A full
	// sync aborts before mutating anything in this case: an empty library
	// set is treated as a failed fetch, not as "delete everything".
	ErrNoLibraries = errors.New("no libraries found to sync")

	// ErrItemNotFound indicates the remote does not know the requested item.
	ErrItemNotFound = errors.New("item not found on remote server")

	// ErrNoAdminUser indicates no admin user could be resolved for API
	// calls that need a user context.
	ErrNoAdminUser = errors.New("no admin user available")
)

// Catalog is the remote catalog surface the engine fetches from.
// *jellyfin.Client implements it.
type Catalog interface {
	Users(ctx context.Context) ([]jellyfin.JFUser, error)
	AdminUsers(ctx context.Context) ([]jellyfin.JFUser, error)
	Libraries(ctx context.Context) ([]jellyfin.JFItem, error)
	ItemsOfType(ctx context.Context, libraryIDs []string, types []string) ([]jellyfin.JFItem, error)
	ItemByID(ctx context.Context, itemID string) ([]jellyfin.JFItem, error)
	PlaybackInfo(ctx context.Context, itemID, userID string) ([]jellyfin.JFMediaSource, error)
	HasPlaybackReporting(ctx context.Context) (bool, error)
	ActivityQuery(ctx context.Context, query string) (*jellyfin.JFCustomQueryResponse, error)
}

// Indexer receives the mirrored items after each full sync.
type Indexer interface {
	IndexItems(ctx context.Context, items []model.Item) error
}

type Options struct {
	Catalog Catalog
	Repo    database.Repository
	// Index, when set, is rebuilt at the end of each full sync.
	Index Indexer
	// ExcludedLibraries are library IDs that are never fetched or reconciled.
	ExcludedLibraries []string
	// PreferredAdminID is the pinned acting user for API calls that need a
	// user context. When empty the first remote administrator is used.
	PreferredAdminID string
}

// Engine mirrors the remote catalog into the local store. It is the sole
// writer of the mirror. The engine does not serialize concurrent sync runs,
// that is the caller's job.
type Engine struct {
	catalog           Catalog
	repo              database.Repository
	index             Indexer
	excludedLibraries []string
	preferredAdminID  string
}

func New(o *Options) *Engine {
	return &Engine{
		catalog:           o.Catalog,
		repo:              o.Repo,
		index:             o.Index,
		excludedLibraries: o.ExcludedLibraries,
		preferredAdminID:  o.PreferredAdminID,
	}
}

// Stats counts the row changes of one reconciliation. Diagnostic only.
type Stats struct {
	Inserted int
	Updated  int
	Deleted  int
}

func (s *Stats) add(other Stats) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Deleted += other.Deleted
}

// StageResult describes the outcome of one sync stage.
type StageResult struct {
	Name     string
	Duration time.Duration
	Stats    Stats
	Err      error
}

// Report describes one full sync run.
type Report struct {
	Trigger  string
	Started  time.Time
	Finished time.Time
	Stages   []StageResult
}

// Failed returns the results of stages that ended in error.
func (r *Report) Failed() []StageResult {
	failed := []StageResult{}
	for _, stage := range r.Stages {
		if stage.Err != nil {
			failed = append(failed, stage)
		}
	}
	return failed
}

// runStage executes one sync stage, logging its name, duration and row
// counts. A stage error is recorded in the report, later stages still run:
// stages are not transactional across stage boundaries, committed progress
// of earlier stages is kept.
func (r *Report) runStage(name string, fn func() (Stats, error)) {
	start := time.Now()
	stats, err := fn()
	result := StageResult{
		Name:     name,
		Duration: time.Since(start),
		Stats:    stats,
		Err:      err,
	}
	r.Stages = append(r.Stages, result)
	if err != nil {
		log.Printf("sync: %s failed after %s: %s", name, result.Duration, err)
		return
	}
	log.Printf("sync: %s: %d inserted, %d updated, %d deleted (%s)",
		name, stats.Inserted, stats.Updated, stats.Deleted, result.Duration)
}
