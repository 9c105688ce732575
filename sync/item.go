package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/erikbos/jellymirror-server/database/model"
)

// SyncItem fetches a single item by its remote ID, attaches it to a
// mirrored library and upserts the item together with its playback info.
// Independent of a full sync.
func (e *Engine) SyncItem(ctx context.Context, itemID string) error {
	userID, err := e.actingUserID(ctx)
	if err != nil {
		return err
	}

	fetched, err := e.catalog.ItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if len(fetched) == 0 {
		return ErrItemNotFound
	}

	// Items fetched by ID carry no media folder reference, attach them to
	// one of the mirrored libraries so the row passes orphan cleanup.
	parentID, err := e.repo.AnyLibraryID(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrNoLibraries
		}
		return err
	}

	items := make([]model.Item, 0, len(fetched))
	for _, item := range fetched {
		row := itemFromJF(item)
		row.ParentID = parentID
		items = append(items, row)
	}
	if err := e.repo.UpsertItems(ctx, items); err != nil {
		return fmt.Errorf("upserting item %s: %w", itemID, err)
	}

	sources, err := e.catalog.PlaybackInfo(ctx, itemID, userID)
	if err != nil {
		return err
	}
	infos := make([]model.ItemInfo, 0, len(sources))
	for _, source := range sources {
		infos = append(infos, itemInfoFromJF(itemID, source))
	}
	if err := e.repo.UpsertItemInfo(ctx, infos); err != nil {
		return fmt.Errorf("upserting item info %s: %w", itemID, err)
	}
	return nil
}

// actingUserID resolves the user context for API calls that require one:
// the pinned preferred admin when configured, otherwise the first remote
// administrator.
func (e *Engine) actingUserID(ctx context.Context) (string, error) {
	if e.preferredAdminID != "" {
		return e.preferredAdminID, nil
	}
	admins, err := e.catalog.AdminUsers(ctx)
	if err != nil {
		return "", err
	}
	if len(admins) == 0 {
		return "", ErrNoAdminUser
	}
	return admins[0].Id, nil
}
