package sync

import (
	"github.com/erikbos/jellymirror-server/database/model"
	"github.com/erikbos/jellymirror-server/jellyfin"
)

// Mappings from remote wire representations to mirror rows.

func userFromJF(user jellyfin.JFUser) model.User {
	return model.User{
		ID:              user.Id,
		Name:            user.Name,
		IsAdministrator: user.Policy.IsAdministrator,
		LastLogin:       user.LastLoginDate,
		LastActivity:    user.LastActivityDate,
	}
}

func libraryFromJF(item jellyfin.JFItem) model.Library {
	return model.Library{
		ID:             item.Id,
		Name:           item.Name,
		CollectionType: item.CollectionType,
	}
}

func itemFromJF(item jellyfin.JFItem) model.Item {
	return model.Item{
		ID:              item.Id,
		Name:            item.Name,
		Type:            item.Type,
		ParentID:        item.ParentId,
		Year:            item.ProductionYear,
		CommunityRating: item.CommunityRating,
		RuntimeTicks:    item.RunTimeTicks,
		DateCreated:     item.DateCreated,
	}
}

func seasonFromJF(item jellyfin.JFItem) model.Season {
	return model.Season{
		ID:          item.Id,
		Name:        item.Name,
		IndexNumber: item.IndexNumber,
		SeriesID:    item.SeriesId,
	}
}

func episodeFromJF(item jellyfin.JFItem) model.Episode {
	return model.Episode{
		ID:                item.Id,
		Name:              item.Name,
		IndexNumber:       item.IndexNumber,
		ParentIndexNumber: item.ParentIndexNumber,
		SeasonID:          item.SeasonId,
		SeriesID:          item.SeriesId,
		RuntimeTicks:      item.RunTimeTicks,
	}
}

func itemInfoFromJF(itemID string, source jellyfin.JFMediaSource) model.ItemInfo {
	return model.ItemInfo{
		ID:        source.Id,
		ItemID:    itemID,
		Path:      source.Path,
		Container: source.Container,
		Size:      source.Size,
		Bitrate:   source.Bitrate,
	}
}
