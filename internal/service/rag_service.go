package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipechat/internal/domain"
)

// DocumentRetriever returns the documents supporting a query.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Document, error)
}

// AnswerGenerator produces an answer from a query and its supporting documents.
type AnswerGenerator interface {
	Generate(ctx context.Context, query string, docs []domain.Document) (string, error)
}

// RAGService chains retrieval and generation. It holds no state of its own.
type RAGService struct {
	retriever DocumentRetriever
	generator AnswerGenerator
	logger    *zap.Logger
}

var _ domain.AnswerPipeline = (*RAGService)(nil)

func NewRAGService(retriever DocumentRetriever, generator AnswerGenerator, logger *zap.Logger) *RAGService {
	return &RAGService{retriever: retriever, generator: generator, logger: logger}
}

// Run retrieves documents for query and passes them to the generator as context.
// Errors from either stage are returned wrapped, never swallowed.
func (s *RAGService) Run(ctx context.Context, query string) (string, error) {
	docs, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	if len(docs) == 0 {
		s.logger.Info("no documents matched, generating with empty context")
	}
	answer, err := s.generator.Generate(ctx, query, docs)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return answer, nil
}
