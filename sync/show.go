package sync

import (
	"context"

	"github.com/erikbos/jellymirror-server/database/model"
)

// syncShows reconciles seasons and episodes. The remote fetch returns the
// full flat list for all series in one page-walk, but the diff has to be
// scoped per series: "what existed before" for series A must never include
// rows of series B, otherwise two series gaining and losing seasons in the
// same run would leak deletes across series. So for each mirrored series we
// partition the fetched list and load the existing ID sets fresh, seasons
// by series, episodes by exactly those seasons. Episodes whose season was
// deleted in an earlier run drop out of the existing set by themselves and
// are swept by the orphan cleanup.
func (e *Engine) syncShows(ctx context.Context, libraryIDs []string) (Stats, error) {
	fetched, err := e.catalog.ItemsOfType(ctx, libraryIDs,
		[]string{model.ItemTypeSeason, model.ItemTypeEpisode})
	if err != nil {
		return Stats{}, err
	}

	series, err := e.repo.SeriesItems(ctx)
	if err != nil {
		return Stats{}, err
	}

	var total Stats
	for _, show := range series {
		seasons := []model.Season{}
		episodes := []model.Episode{}
		for _, item := range fetched {
			if item.SeriesId != show.ID {
				continue
			}
			switch item.Type {
			case model.ItemTypeSeason:
				seasons = append(seasons, seasonFromJF(item))
			case model.ItemTypeEpisode:
				episodes = append(episodes, episodeFromJF(item))
			}
		}

		existingSeasons, err := e.repo.SeasonIDsBySeries(ctx, show.ID)
		if err != nil {
			return total, err
		}
		existingEpisodes, err := e.repo.EpisodeIDsBySeasons(ctx, existingSeasons)
		if err != nil {
			return total, err
		}

		seasonStats, err := reconcile(ctx, existingSeasons, seasons,
			func(s model.Season) string { return s.ID },
			e.repo.UpsertSeasons, e.repo.DeleteSeasons)
		if err != nil {
			return total, err
		}
		total.add(seasonStats)

		episodeStats, err := reconcile(ctx, existingEpisodes, episodes,
			func(ep model.Episode) string { return ep.ID },
			e.repo.UpsertEpisodes, e.repo.DeleteEpisodes)
		if err != nil {
			return total, err
		}
		total.add(episodeStats)
	}
	return total, nil
}
