package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/erikbos/jellymirror-server/database/model"
	"github.com/erikbos/jellymirror-server/jellyfin"
)

// activityTimeFormat is the timestamp format of the remote activity log.
const activityTimeFormat = "2006-01-02 15:04:05"

// watermark is the ingestion checkpoint: rows older than oldest (back-fill
// window) with a sequence number above maxSeq (already-seen guard) are the
// only ones requested. Read fresh from the store at the start of each run.
type watermark struct {
	oldest    time.Time
	hasOldest bool
	maxSeq    int64
	hasMaxSeq bool
}

// syncActivity incrementally ingests the remote playback reporting log. A
// remote without the playback reporting plugin makes this a no-op. Failure
// here is fatal for this stage only, the rest of a full sync continues.
func (e *Engine) syncActivity(ctx context.Context) (Stats, error) {
	installed, err := e.catalog.HasPlaybackReporting(ctx)
	if err != nil {
		return Stats{}, err
	}
	if !installed {
		log.Printf("sync: playback reporting plugin not detected, skipping activity")
		return Stats{}, nil
	}

	mark, err := e.activityWatermark(ctx)
	if err != nil {
		return Stats{}, err
	}

	response, err := e.catalog.ActivityQuery(ctx, buildActivityQuery(mark))
	if err != nil {
		return Stats{}, err
	}
	rows, err := activityRowsFromResponse(response, mark)
	if err != nil {
		return Stats{}, err
	}

	if err := e.repo.InsertActivityRaw(ctx, rows); err != nil {
		return Stats{}, err
	}
	// The transform is idempotent and cheap on zero new rows, always run it
	// so raw rows from an earlier interrupted run still get projected.
	if err := e.repo.TransformActivity(ctx); err != nil {
		return Stats{}, err
	}
	return Stats{Inserted: len(rows)}, nil
}

func (e *Engine) activityWatermark(ctx context.Context) (watermark, error) {
	var mark watermark

	oldest, err := e.repo.OldestActivityTime(ctx)
	switch {
	case err == nil:
		mark.oldest = oldest
		mark.hasOldest = true
	case errors.Is(err, model.ErrNotFound):
		// no local activity yet, full back-fill
	default:
		return mark, err
	}

	maxSeq, err := e.repo.MaxActivitySequence(ctx)
	switch {
	case err == nil:
		mark.maxSeq = maxSeq
		mark.hasMaxSeq = true
	case errors.Is(err, model.ErrNotFound):
		// nothing ingested yet
	default:
		return mark, err
	}
	return mark, nil
}

// buildActivityQuery builds the remote activity log query bounded by the
// watermark: only rows older than the local window, and within that window
// only sequence numbers we have not seen.
func buildActivityQuery(mark watermark) string {
	query := "SELECT rowid, * FROM PlaybackActivity"
	if mark.hasOldest {
		query += fmt.Sprintf(" WHERE DateCreated < '%s'",
			mark.oldest.UTC().Format(activityTimeFormat))
		if mark.hasMaxSeq {
			query += fmt.Sprintf(" AND rowid > %d", mark.maxSeq)
		}
	} else if mark.hasMaxSeq {
		query += fmt.Sprintf(" WHERE rowid > %d", mark.maxSeq)
	}
	return query + " ORDER BY rowid"
}

// activityRowsFromResponse maps custom query result rows to mirror rows.
// The watermark bounds are re-applied locally: the remote is expected to
// have filtered already, but ingestion monotonicity must not depend on it.
func activityRowsFromResponse(response *jellyfin.JFCustomQueryResponse, mark watermark) ([]model.ActivityRaw, error) {
	column := make(map[string]int, len(response.Columns))
	for i, name := range response.Columns {
		column[name] = i
	}
	field := func(result []string, name string) string {
		i, ok := column[name]
		if !ok || i >= len(result) {
			return ""
		}
		return result[i]
	}

	rows := make([]model.ActivityRaw, 0, len(response.Results))
	for _, result := range response.Results {
		rowID, err := strconv.ParseInt(field(result, "rowid"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("activity row without valid rowid: %w", err)
		}
		created, err := parseActivityTime(field(result, "DateCreated"))
		if err != nil {
			return nil, fmt.Errorf("activity row %d: %w", rowID, err)
		}
		if mark.hasMaxSeq && rowID <= mark.maxSeq {
			continue
		}
		if mark.hasOldest && !created.Before(mark.oldest) {
			continue
		}
		duration, _ := strconv.ParseInt(field(result, "PlayDuration"), 10, 64)

		rows = append(rows, model.ActivityRaw{
			RowID:          rowID,
			DateCreated:    created,
			UserID:         field(result, "UserId"),
			ItemID:         field(result, "ItemId"),
			ItemType:       field(result, "ItemType"),
			ItemName:       field(result, "ItemName"),
			PlaybackMethod: field(result, "PlaybackMethod"),
			ClientName:     field(result, "ClientName"),
			DeviceName:     field(result, "DeviceName"),
			PlayDuration:   duration,
		})
	}
	return rows, nil
}

func parseActivityTime(value string) (time.Time, error) {
	for _, layout := range []string{
		activityTimeFormat,
		"2006-01-02 15:04:05.9999999",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable activity timestamp %q", value)
}
