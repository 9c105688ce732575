package sync

import (
	"context"
	"sort"
	"time"

	"github.com/erikbos/jellymirror-server/database/model"
	"github.com/erikbos/jellymirror-server/jellyfin"
)

// fakeCatalog serves canned remote responses.
type fakeCatalog struct {
	users             []jellyfin.JFUser
	libraries         []jellyfin.JFItem
	librariesErr      error
	items             []jellyfin.JFItem
	itemsErr          error
	itemByID          map[string][]jellyfin.JFItem
	playbackInfo      []jellyfin.JFMediaSource
	playbackReporting bool
	activityResponse  *jellyfin.JFCustomQueryResponse
	activityQueries   []string
}

func (c *fakeCatalog) Users(ctx context.Context) ([]jellyfin.JFUser, error) {
	return c.users, nil
}

func (c *fakeCatalog) AdminUsers(ctx context.Context) ([]jellyfin.JFUser, error) {
	admins := []jellyfin.JFUser{}
	for _, user := range c.users {
		if user.Policy.IsAdministrator {
			admins = append(admins, user)
		}
	}
	return admins, nil
}

func (c *fakeCatalog) Libraries(ctx context.Context) ([]jellyfin.JFItem, error) {
	return c.libraries, c.librariesErr
}

func (c *fakeCatalog) ItemsOfType(ctx context.Context, libraryIDs []string, types []string) ([]jellyfin.JFItem, error) {
	if c.itemsErr != nil {
		return nil, c.itemsErr
	}
	matched := []jellyfin.JFItem{}
	for _, item := range c.items {
		for _, wantType := range types {
			if item.Type == wantType {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched, nil
}

func (c *fakeCatalog) ItemByID(ctx context.Context, itemID string) ([]jellyfin.JFItem, error) {
	return c.itemByID[itemID], nil
}

func (c *fakeCatalog) PlaybackInfo(ctx context.Context, itemID, userID string) ([]jellyfin.JFMediaSource, error) {
	return c.playbackInfo, nil
}

func (c *fakeCatalog) HasPlaybackReporting(ctx context.Context) (bool, error) {
	return c.playbackReporting, nil
}

func (c *fakeCatalog) ActivityQuery(ctx context.Context, query string) (*jellyfin.JFCustomQueryResponse, error) {
	c.activityQueries = append(c.activityQueries, query)
	if c.activityResponse != nil {
		return c.activityResponse, nil
	}
	return &jellyfin.JFCustomQueryResponse{}, nil
}

// fakeRepo is an in-memory database.Repository.
type fakeRepo struct {
	users    map[string]model.User
	libs     map[string]model.Library
	items    map[string]model.Item
	seasons  map[string]model.Season
	episodes map[string]model.Episode
	infos    map[string]model.ItemInfo
	raw      map[int64]model.ActivityRaw
	activity map[int64]model.Activity
	stats    []model.LibraryStats
	syncLogs []model.SyncLog

	upsertItemsErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    map[string]model.User{},
		libs:     map[string]model.Library{},
		items:    map[string]model.Item{},
		seasons:  map[string]model.Season{},
		episodes: map[string]model.Episode{},
		infos:    map[string]model.ItemInfo{},
		raw:      map[int64]model.ActivityRaw{},
		activity: map[int64]model.Activity{},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *fakeRepo) UserIDs(ctx context.Context) ([]string, error) {
	return sortedKeys(r.users), nil
}

func (r *fakeRepo) UpsertUsers(ctx context.Context, users []model.User) error {
	for _, user := range users {
		r.users[user.ID] = user
	}
	return nil
}

func (r *fakeRepo) DeleteUsers(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.users, id)
	}
	return nil
}

func (r *fakeRepo) LibraryIDs(ctx context.Context) ([]string, error) {
	return sortedKeys(r.libs), nil
}

func (r *fakeRepo) AnyLibraryID(ctx context.Context) (string, error) {
	for _, id := range sortedKeys(r.libs) {
		return id, nil
	}
	return "", model.ErrNotFound
}

func (r *fakeRepo) UpsertLibraries(ctx context.Context, libraries []model.Library) error {
	for _, library := range libraries {
		r.libs[library.ID] = library
	}
	return nil
}

func (r *fakeRepo) DeleteLibraries(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.libs, id)
	}
	return nil
}

func (r *fakeRepo) ItemIDs(ctx context.Context) ([]string, error) {
	return sortedKeys(r.items), nil
}

func (r *fakeRepo) ItemIDsByLibrary(ctx context.Context, libraryIDs []string) ([]string, error) {
	ids := []string{}
	for _, id := range sortedKeys(r.items) {
		for _, libraryID := range libraryIDs {
			if r.items[id].ParentID == libraryID {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (r *fakeRepo) Items(ctx context.Context) ([]model.Item, error) {
	items := make([]model.Item, 0, len(r.items))
	for _, id := range sortedKeys(r.items) {
		items = append(items, r.items[id])
	}
	return items, nil
}

func (r *fakeRepo) UpsertItems(ctx context.Context, items []model.Item) error {
	if r.upsertItemsErr != nil {
		return r.upsertItemsErr
	}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return nil
}

func (r *fakeRepo) DeleteItems(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.items, id)
	}
	return nil
}

func (r *fakeRepo) UpsertItemInfo(ctx context.Context, infos []model.ItemInfo) error {
	for _, info := range infos {
		r.infos[info.ID] = info
	}
	return nil
}

func (r *fakeRepo) SeriesItems(ctx context.Context) ([]model.Item, error) {
	series := []model.Item{}
	for _, id := range sortedKeys(r.items) {
		if r.items[id].Type == model.ItemTypeSeries {
			series = append(series, r.items[id])
		}
	}
	return series, nil
}

func (r *fakeRepo) SeasonIDsBySeries(ctx context.Context, seriesID string) ([]string, error) {
	ids := []string{}
	for _, id := range sortedKeys(r.seasons) {
		if r.seasons[id].SeriesID == seriesID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeRepo) EpisodeIDsBySeasons(ctx context.Context, seasonIDs []string) ([]string, error) {
	ids := []string{}
	for _, id := range sortedKeys(r.episodes) {
		for _, seasonID := range seasonIDs {
			if r.episodes[id].SeasonID == seasonID {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (r *fakeRepo) UpsertSeasons(ctx context.Context, seasons []model.Season) error {
	for _, season := range seasons {
		r.seasons[season.ID] = season
	}
	return nil
}

func (r *fakeRepo) DeleteSeasons(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.seasons, id)
	}
	return nil
}

func (r *fakeRepo) UpsertEpisodes(ctx context.Context, episodes []model.Episode) error {
	for _, episode := range episodes {
		r.episodes[episode.ID] = episode
	}
	return nil
}

func (r *fakeRepo) DeleteEpisodes(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.episodes, id)
	}
	return nil
}

func (r *fakeRepo) OldestActivityTime(ctx context.Context) (time.Time, error) {
	var oldest time.Time
	for _, row := range r.activity {
		if oldest.IsZero() || row.DateCreated.Before(oldest) {
			oldest = row.DateCreated
		}
	}
	if oldest.IsZero() {
		return time.Time{}, model.ErrNotFound
	}
	return oldest, nil
}

func (r *fakeRepo) MaxActivitySequence(ctx context.Context) (int64, error) {
	var max int64
	var found bool
	for rowID := range r.raw {
		if rowID > max {
			max = rowID
		}
		found = true
	}
	if !found {
		return 0, model.ErrNotFound
	}
	return max, nil
}

func (r *fakeRepo) InsertActivityRaw(ctx context.Context, rows []model.ActivityRaw) error {
	for _, row := range rows {
		if _, ok := r.raw[row.RowID]; ok {
			continue
		}
		r.raw[row.RowID] = row
	}
	return nil
}

func (r *fakeRepo) TransformActivity(ctx context.Context) error {
	for rowID, row := range r.raw {
		if _, ok := r.activity[rowID]; ok {
			continue
		}
		r.activity[rowID] = model.Activity{
			ID:             row.UserID + "-" + row.ItemID,
			RowID:          rowID,
			UserID:         row.UserID,
			UserName:       r.users[row.UserID].Name,
			ItemID:         row.ItemID,
			ItemType:       row.ItemType,
			ItemName:       row.ItemName,
			PlaybackMethod: row.PlaybackMethod,
			ClientName:     row.ClientName,
			DeviceName:     row.DeviceName,
			PlayDuration:   row.PlayDuration,
			DateCreated:    row.DateCreated,
			DateInserted:   time.Now(),
		}
	}
	return nil
}

func (r *fakeRepo) Activity(ctx context.Context, limit int) ([]model.Activity, error) {
	rows := make([]model.Activity, 0, len(r.activity))
	for _, row := range r.activity {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RowID > rows[j].RowID })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeRepo) RemoveOrphans(ctx context.Context) error {
	for id, item := range r.items {
		if _, ok := r.libs[item.ParentID]; !ok {
			delete(r.items, id)
		}
	}
	for id, season := range r.seasons {
		if _, ok := r.items[season.SeriesID]; !ok {
			delete(r.seasons, id)
		}
	}
	for id, episode := range r.episodes {
		_, seasonOK := r.seasons[episode.SeasonID]
		_, seriesOK := r.items[episode.SeriesID]
		if !seasonOK || !seriesOK {
			delete(r.episodes, id)
		}
	}
	for id, info := range r.infos {
		if _, ok := r.items[info.ItemID]; !ok {
			delete(r.infos, id)
		}
	}
	return nil
}

func (r *fakeRepo) RefreshLibraryStats(ctx context.Context) error {
	r.stats = nil
	for _, libraryID := range sortedKeys(r.libs) {
		stats := model.LibraryStats{
			LibraryID:   libraryID,
			LibraryName: r.libs[libraryID].Name,
			Updated:     time.Now(),
		}
		for _, item := range r.items {
			if item.ParentID == libraryID {
				stats.ItemCount++
			}
		}
		r.stats = append(r.stats, stats)
	}
	return nil
}

func (r *fakeRepo) LibraryStats(ctx context.Context) ([]model.LibraryStats, error) {
	return r.stats, nil
}

func (r *fakeRepo) RefreshActivityUserNames(ctx context.Context) error {
	for rowID, row := range r.activity {
		if user, ok := r.users[row.UserID]; ok && user.Name != row.UserName {
			row.UserName = user.Name
			r.activity[rowID] = row
		}
	}
	return nil
}

func (r *fakeRepo) InsertSyncLog(ctx context.Context, entry model.SyncLog) error {
	r.syncLogs = append(r.syncLogs, entry)
	return nil
}

func (r *fakeRepo) SyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	logs := r.syncLogs
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return logs, nil
}
