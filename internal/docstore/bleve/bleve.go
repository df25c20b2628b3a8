// Package bleve provides an in-memory Bleve implementation of docstore.Storage.
package bleve

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"recipechat/internal/docstore"
	"recipechat/internal/domain"
)

const (
	contentField = "content"
	batchSize    = 1000
)

// Storage is a memory-only Bleve index over document contents.
type Storage struct {
	index bleve.Index
}

var _ docstore.Storage = (*Storage)(nil)

// NewStorage creates an empty memory-only index.
func NewStorage() (*Storage, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &Storage{index: index}, nil
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize + English stop words, no stemming) so
	// nutrient names such as "protein" match exactly.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(contentField, textFieldMapping)
	im.DefaultMapping = docMapping
	return im
}

// Index adds documents in batches.
func (s *Storage) Index(ctx context.Context, docs []domain.Document) error {
	batch := s.index.NewBatch()
	for i, d := range docs {
		if err := batch.Index(d.ID, map[string]interface{}{contentField: d.Content}); err != nil {
			return fmt.Errorf("index document %s: %w", d.ID, err)
		}
		if batch.Size() >= batchSize || i == len(docs)-1 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("Bleve batch failed: %w", err)
			}
			batch.Reset()
		}
	}
	return nil
}

// Search runs a match query over document contents and returns up to topK results.
// Results are ordered by score, ties by document ID (load order).
func (s *Storage) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = docstore.DefaultTopK
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	q := bleve.NewMatchQuery(query)
	q.SetField(contentField)
	req := bleve.NewSearchRequestOptions(q, topK, 0, false)
	req.Fields = []string{contentField}
	req.SortBy([]string{"-_score", "_id"})
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]domain.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		content, _ := hit.Fields[contentField].(string)
		out = append(out, domain.SearchResult{
			Document: domain.Document{ID: hit.ID, Content: content},
			Score:    hit.Score,
		})
	}
	return out, nil
}

// Count returns the number of indexed documents.
func (s *Storage) Count() (uint64, error) {
	return s.index.DocCount()
}

// Close releases the index.
func (s *Storage) Close() error {
	return s.index.Close()
}
