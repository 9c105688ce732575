package search

import (
	"context"
	"strings"
	"sync"

	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/erikbos/jellymirror-server/database/model"
)

// Index is the bleve-backed search index over mirrored library items. It is
// rebuilt from the mirror at the end of each full sync.
type Index struct {
	mu sync.RWMutex
	// index is the underlying bleve index.
	index bleve.Index
}

// Document is the document we store in bleve per mirrored item.
type Document struct {
	// Item ID
	ID string `json:"id"`
	// Owning library ID
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
	// NameExact is a helper field to make exact name matches more accurate
	NameExact string `json:"name_exact"`
	Type      string `json:"type"`
	Year      int    `json:"year"`
}

// New creates a new empty in-memory index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{
		index: idx,
	}, nil
}

// buildIndexMapping builds the bleve index field mapping configuration.
func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = "en"
	// Not storing the full text, only indexing. We only care about getting
	// a match and then retrieving IDs.
	textFieldMapping.Store = false
	textFieldMapping.Index = true

	// keyword mapping for exact matches like IDs
	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	doc.AddFieldMappingsAt("id", keyword)
	doc.AddFieldMappingsAt("parent_id", keyword)
	doc.AddFieldMappingsAt("name", textFieldMapping)
	doc.AddFieldMappingsAt("name_exact", keyword)
	doc.AddFieldMappingsAt("type", keyword)

	m.DefaultMapping = doc
	return m
}

// IndexItems replaces the index contents with the given mirrored items.
func (b *Index) IndexItems(ctx context.Context, items []model.Item) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for _, item := range items {
		doc := Document{
			ID:        item.ID,
			ParentID:  item.ParentID,
			Name:      item.Name,
			NameExact: strings.ToLower(item.Name),
			Type:      item.Type,
			Year:      item.Year,
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return err
		}
		// commit in big batches to avoid huge memory usage
		if batch.Size() > 1000 {
			if err := idx.Batch(batch); err != nil {
				return err
			}
			batch = idx.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			return err
		}
	}

	b.mu.Lock()
	old := b.index
	b.index = idx
	b.mu.Unlock()
	return old.Close()
}

// Search runs a fuzzy search over item names and returns matching item IDs,
// best match first.
func (b *Index) Search(ctx context.Context, searchTerm string, size int) ([]string, error) {
	searchTerm = strings.ToLower(strings.TrimSpace(searchTerm))
	if searchTerm == "" {
		return nil, nil
	}

	// Weights for boosting certain query types.
	const (
		boostNameExact  = 50.0 // strongest: exact match on name_exact field
		boostNamePhrase = 12.0 // very strong: exact phrase in name
		boostNamePrefix = 6.0  // strong: prefix on whole query against name
		boostNameFuzzy  = 3.0  // fuzzy on name tokens
	)

	boolQuery := bleve.NewBooleanQuery()

	termExact := bleve.NewTermQuery(searchTerm)
	termExact.SetField("name_exact")
	termExact.SetBoost(boostNameExact)
	boolQuery.AddShould(termExact)

	matchPhrase := bleve.NewMatchPhraseQuery(searchTerm)
	matchPhrase.SetField("name")
	matchPhrase.SetBoost(boostNamePhrase)
	boolQuery.AddShould(matchPhrase)

	prefixFull := bleve.NewPrefixQuery(searchTerm)
	prefixFull.SetField("name")
	prefixFull.SetBoost(boostNamePrefix)
	boolQuery.AddShould(prefixFull)

	for _, tok := range strings.Fields(searchTerm) {
		fuzz := 1
		if len(tok) >= 6 {
			fuzz = 2
		}
		fq := bleve.NewFuzzyQuery(tok)
		fq.SetField("name")
		fq.SetFuzziness(fuzz)
		fq.SetBoost(boostNameFuzzy)
		boolQuery.AddShould(fq)

		pq := bleve.NewPrefixQuery(tok)
		pq.SetField("name")
		pq.SetBoost(boostNameFuzzy)
		boolQuery.AddShould(pq)
	}

	request := bleve.NewSearchRequestOptions(boolQuery, size, 0, false)

	b.mu.RLock()
	result, err := b.index.SearchInContext(ctx, request)
	b.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
