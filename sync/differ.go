package sync

import (
	"context"
)

// diffResult is the outcome of diffing a fetched collection against the
// IDs already mirrored. insert holds every fetched row: the reconciler
// upserts, so rows that already exist locally are harmlessly re-written.
// remove holds the mirrored IDs absent from the fetch, in no particular
// order.
type diffResult[R any] struct {
	insert []R
	remove []string
	stats  Stats
}

// diffRows computes the diff between the mirrored ID set and a fetched
// collection. Pure: no I/O, no mutation of its inputs. An empty fetch
// against a non-empty mirror marks every mirrored row for removal, the
// remote is authoritative; callers must therefore never pass the result
// of a failed fetch.
func diffRows[R any](existing []string, fetched []R, id func(R) string) diffResult[R] {
	fetchedIDs := make(map[string]struct{}, len(fetched))
	for _, row := range fetched {
		fetchedIDs[id(row)] = struct{}{}
	}
	existingIDs := make(map[string]struct{}, len(existing))
	for _, existingID := range existing {
		existingIDs[existingID] = struct{}{}
	}

	d := diffResult[R]{
		insert: fetched,
	}
	for _, row := range fetched {
		if _, ok := existingIDs[id(row)]; ok {
			d.stats.Updated++
		} else {
			d.stats.Inserted++
		}
	}
	for _, existingID := range existing {
		if _, ok := fetchedIDs[existingID]; !ok {
			d.remove = append(d.remove, existingID)
		}
	}
	d.stats.Deleted = len(d.remove)
	return d
}

// reconcile applies a diff to one table: bulk upsert of all fetched rows,
// then bulk delete of the rows no longer present remotely. Both operations
// are all-or-nothing per table, a failing bulk write fails the stage.
func reconcile[R any](ctx context.Context, existing []string, fetched []R,
	id func(R) string,
	upsert func(context.Context, []R) error,
	remove func(context.Context, []string) error) (Stats, error) {

	d := diffRows(existing, fetched, id)
	if len(d.insert) > 0 {
		if err := upsert(ctx, d.insert); err != nil {
			return Stats{}, err
		}
	}
	if len(d.remove) > 0 {
		if err := remove(ctx, d.remove); err != nil {
			return Stats{}, err
		}
	}
	return d.stats, nil
}
