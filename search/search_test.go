package search

import (
	"context"
	"testing"

	"github.com/erikbos/jellymirror-server/database/model"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := New()
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	items := []model.Item{
		{ID: "m1", Name: "Heat", Type: model.ItemTypeMovie, Year: 1995},
		{ID: "m2", Name: "The Heat of the Night", Type: model.ItemTypeMovie},
		{ID: "m3", Name: "Ronin", Type: model.ItemTypeMovie},
		{ID: "m4", Name: "Collateral Damage", Type: model.ItemTypeMovie},
		{ID: "show1", Name: "The Wire", Type: model.ItemTypeSeries},
	}
	if err := index.IndexItems(context.Background(), items); err != nil {
		t.Fatalf("IndexItems: %s", err)
	}
	return index
}

func TestSearchExactMatchRanksFirst(t *testing.T) {
	index := newTestIndex(t)
	ids, err := index.Search(context.Background(), "heat", 10)
	if err != nil {
		t.Fatalf("Search: %s", err)
	}
	if len(ids) == 0 {
		t.Fatal("no results")
	}
	if ids[0] != "m1" {
		t.Errorf("first hit = %s, want exact match m1", ids[0])
	}
}

func TestSearchFuzzy(t *testing.T) {
	index := newTestIndex(t)
	tests := []struct {
		term string
		want string
	}{
		// short tokens allow one edit
		{"ronon", "m3"},
		// tokens of six characters or more allow two
		{"colatteral", "m4"},
	}
	for _, test := range tests {
		ids, err := index.Search(context.Background(), test.term, 10)
		if err != nil {
			t.Fatalf("Search %s: %s", test.term, err)
		}
		found := false
		for _, id := range ids {
			if id == test.want {
				found = true
			}
		}
		if !found {
			t.Errorf("fuzzy search for %s missed %s, got %v", test.term, test.want, ids)
		}
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	index := newTestIndex(t)
	ids, err := index.Search(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("Search: %s", err)
	}
	if len(ids) != 0 {
		t.Errorf("blank term returned %v", ids)
	}
}

func TestIndexItemsReplacesContents(t *testing.T) {
	index := newTestIndex(t)
	if err := index.IndexItems(context.Background(), []model.Item{
		{ID: "m9", Name: "Alien", Type: model.ItemTypeMovie},
	}); err != nil {
		t.Fatalf("IndexItems: %s", err)
	}

	ids, err := index.Search(context.Background(), "heat", 10)
	if err != nil {
		t.Fatalf("Search: %s", err)
	}
	if len(ids) != 0 {
		t.Errorf("stale documents survived the rebuild: %v", ids)
	}
	ids, _ = index.Search(context.Background(), "alien", 10)
	if len(ids) != 1 || ids[0] != "m9" {
		t.Errorf("got %v, want [m9]", ids)
	}
}
