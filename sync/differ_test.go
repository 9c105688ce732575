package sync

import (
	"context"
	"errors"
	"sort"
	"testing"
)

type row struct {
	id string
}

func rowIDs(rows []row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.id)
	}
	return ids
}

func TestDiffRows(t *testing.T) {
	tests := []struct {
		name       string
		existing   []string
		fetched    []row
		wantRemove []string
		wantStats  Stats
	}{
		{
			name:      "all new",
			fetched:   []row{{"a"}, {"b"}},
			wantStats: Stats{Inserted: 2},
		},
		{
			name:      "all known",
			existing:  []string{"a", "b"},
			fetched:   []row{{"a"}, {"b"}},
			wantStats: Stats{Updated: 2},
		},
		{
			name:       "mixed",
			existing:   []string{"a", "b", "c"},
			fetched:    []row{{"b"}, {"d"}},
			wantRemove: []string{"a", "c"},
			wantStats:  Stats{Inserted: 1, Updated: 1, Deleted: 2},
		},
		{
			name:       "empty fetch removes everything",
			existing:   []string{"a", "b"},
			wantRemove: []string{"a", "b"},
			wantStats:  Stats{Deleted: 2},
		},
		{
			name: "both empty",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := diffRows(test.existing, test.fetched, func(r row) string { return r.id })

			if got, want := rowIDs(d.insert), rowIDs(test.fetched); len(got) != len(want) {
				t.Errorf("insert = %v, want all fetched rows %v", got, want)
			}
			sort.Strings(d.remove)
			if len(d.remove) != len(test.wantRemove) {
				t.Fatalf("remove = %v, want %v", d.remove, test.wantRemove)
			}
			for i := range d.remove {
				if d.remove[i] != test.wantRemove[i] {
					t.Errorf("remove = %v, want %v", d.remove, test.wantRemove)
					break
				}
			}
			if d.stats != test.wantStats {
				t.Errorf("stats = %+v, want %+v", d.stats, test.wantStats)
			}
		})
	}
}

func TestReconcileUpsertsBeforeDeletes(t *testing.T) {
	var calls []string
	_, err := reconcile(context.Background(),
		[]string{"a", "b"}, []row{{"b"}, {"c"}},
		func(r row) string { return r.id },
		func(ctx context.Context, rows []row) error {
			calls = append(calls, "upsert")
			return nil
		},
		func(ctx context.Context, ids []string) error {
			calls = append(calls, "delete")
			return nil
		})
	if err != nil {
		t.Fatalf("reconcile: %s", err)
	}
	if len(calls) != 2 || calls[0] != "upsert" || calls[1] != "delete" {
		t.Errorf("calls = %v, want [upsert delete]", calls)
	}
}

func TestReconcileSkipsEmptyWrites(t *testing.T) {
	_, err := reconcile(context.Background(), nil, []row{},
		func(r row) string { return r.id },
		func(ctx context.Context, rows []row) error {
			t.Error("upsert called with nothing to write")
			return nil
		},
		func(ctx context.Context, ids []string) error {
			t.Error("delete called with nothing to remove")
			return nil
		})
	if err != nil {
		t.Fatalf("reconcile: %s", err)
	}
}

func TestReconcileUpsertFailureSkipsDelete(t *testing.T) {
	upsertErr := errors.New("write failed")
	_, err := reconcile(context.Background(),
		[]string{"a"}, []row{{"b"}},
		func(r row) string { return r.id },
		func(ctx context.Context, rows []row) error { return upsertErr },
		func(ctx context.Context, ids []string) error {
			t.Error("delete ran after failed upsert")
			return nil
		})
	if !errors.Is(err, upsertErr) {
		t.Errorf("err = %v, want %v", err, upsertErr)
	}
}
