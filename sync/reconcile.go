package sync

import (
	"context"
	"slices"

	"github.com/erikbos/jellymirror-server/database/model"
	"github.com/erikbos/jellymirror-server/jellyfin"
)

// syncUsers replaces the mirrored user set with the remote one and re-copies
// drifted user names onto existing activity rows.
func (e *Engine) syncUsers(ctx context.Context) (Stats, error) {
	remoteUsers, err := e.catalog.Users(ctx)
	if err != nil {
		return Stats{}, err
	}
	existing, err := e.repo.UserIDs(ctx)
	if err != nil {
		return Stats{}, err
	}

	users := make([]model.User, 0, len(remoteUsers))
	for _, user := range remoteUsers {
		users = append(users, userFromJF(user))
	}
	stats, err := reconcile(ctx, existing, users,
		func(u model.User) string { return u.ID },
		e.repo.UpsertUsers, e.repo.DeleteUsers)
	if err != nil {
		return stats, err
	}

	return stats, e.repo.RefreshActivityUserNames(ctx)
}

// syncLibraries reconciles the library table against the fetched (already
// exclusion-filtered) library set. Items of deleted libraries are removed
// first so no item row is left pointing at a vanished library.
func (e *Engine) syncLibraries(ctx context.Context, fetched []jellyfin.JFItem) (Stats, error) {
	existing, err := e.repo.LibraryIDs(ctx)
	if err != nil {
		return Stats{}, err
	}

	libraries := make([]model.Library, 0, len(fetched))
	for _, item := range fetched {
		libraries = append(libraries, libraryFromJF(item))
	}
	d := diffRows(existing, libraries,
		func(l model.Library) string { return l.ID })

	if len(d.insert) > 0 {
		if err := e.repo.UpsertLibraries(ctx, d.insert); err != nil {
			return Stats{}, err
		}
	}
	if len(d.remove) > 0 {
		orphanedItems, err := e.repo.ItemIDsByLibrary(ctx, d.remove)
		if err != nil {
			return Stats{}, err
		}
		if err := e.repo.DeleteItems(ctx, orphanedItems); err != nil {
			return Stats{}, err
		}
		if err := e.repo.DeleteLibraries(ctx, d.remove); err != nil {
			return Stats{}, err
		}
	}
	return d.stats, nil
}

// syncItems reconciles the flat library item table: movies, audio tracks and
// series. Fetched rows referencing a library absent from the mirror are
// excluded from the pass, an item is never inserted dangling.
func (e *Engine) syncItems(ctx context.Context, libraryIDs []string) (Stats, error) {
	fetched, err := e.catalog.ItemsOfType(ctx, libraryIDs,
		[]string{model.ItemTypeMovie, model.ItemTypeAudio, model.ItemTypeSeries})
	if err != nil {
		return Stats{}, err
	}

	mirroredLibraries, err := e.repo.LibraryIDs(ctx)
	if err != nil {
		return Stats{}, err
	}
	items := make([]model.Item, 0, len(fetched))
	for _, item := range fetched {
		if !slices.Contains(mirroredLibraries, item.ParentId) {
			continue
		}
		items = append(items, itemFromJF(item))
	}

	existing, err := e.repo.ItemIDs(ctx)
	if err != nil {
		return Stats{}, err
	}
	return reconcile(ctx, existing, items,
		func(i model.Item) string { return i.ID },
		e.repo.UpsertItems, e.repo.DeleteItems)
}
