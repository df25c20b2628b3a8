// Package docstore holds the in-memory document indexes used for lexical retrieval.
package docstore

import (
	"context"

	"recipechat/internal/domain"
)

// DefaultTopK is used when a search asks for zero or fewer results.
const DefaultTopK = 3

// Storage keeps documents and supports keyword search.
type Storage interface {
	Index(ctx context.Context, docs []domain.Document) error
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
	Count() (uint64, error)
	Close() error
}
