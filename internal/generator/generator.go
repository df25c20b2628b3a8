// Package generator renders the recipe prompt and asks a hosted language model to answer it.
package generator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recipechat/internal/domain"
)

// Generator turns a query and its supporting documents into a free-text answer.
type Generator struct {
	completer domain.Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a generator. A timeout <= 0 leaves the model call unbounded.
func New(completer domain.Completer, timeout time.Duration, logger *zap.Logger) *Generator {
	return &Generator{completer: completer, timeout: timeout, logger: logger}
}

// Generate renders the prompt and returns the raw completion.
// Every failure of the model call is returned as *domain.GenerationError.
func (g *Generator) Generate(ctx context.Context, query string, docs []domain.Document) (string, error) {
	prompt := RenderPrompt(query, docs)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	start := time.Now()
	answer, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		g.logger.Error("generation failed",
			zap.String("model", g.completer.Model()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", &domain.GenerationError{Model: g.completer.Model(), Err: err}
	}
	g.logger.Info("answer generated",
		zap.String("model", g.completer.Model()),
		zap.Int("documents", len(docs)),
		zap.Int("answer_len", len(answer)),
		zap.Duration("elapsed", time.Since(start)))
	return answer, nil
}
