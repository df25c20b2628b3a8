// Package retriever selects the documents passed to the answer generator.
package retriever

import (
	"context"

	"go.uber.org/zap"

	"recipechat/internal/docstore"
	"recipechat/internal/domain"
)

// Retriever returns the top-K most relevant documents for a query.
type Retriever struct {
	store  docstore.Storage
	topK   int
	logger *zap.Logger
}

// New creates a retriever over store. topK <= 0 uses docstore.DefaultTopK.
func New(store docstore.Storage, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = docstore.DefaultTopK
	}
	return &Retriever{store: store, topK: topK, logger: logger}
}

// TopK reports how many documents Retrieve returns at most.
func (r *Retriever) TopK() int { return r.topK }

// Retrieve returns at most TopK documents, most relevant first. An empty index yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.Document, error) {
	res, err := r.store.Search(ctx, query, r.topK)
	if err != nil {
		return nil, err
	}
	docs := make([]domain.Document, len(res))
	for i, hit := range res {
		docs[i] = hit.Document
	}
	r.logger.Debug("documents retrieved",
		zap.Int("count", len(docs)),
		zap.Int("top_k", r.topK))
	return docs, nil
}
