package domain

import "context"

// Document is a single dataset record loaded into the index.
type Document struct {
	ID      string
	Content string
}

// SearchResult represents a matching document with a relevance score.
type SearchResult struct {
	Document Document
	Score    float64
}

// Message is one chat message emitted to the user.
type Message struct {
	Author  string
	Content string
}

// Chat authors.
const (
	AuthorSystem = "System"
	AuthorBot    = "Bot"
)

// Loader fetches the corpus and converts each record into a Document.
type Loader interface {
	Load(ctx context.Context) ([]Document, error)
}

// Completer sends a rendered prompt to a language model and returns its text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// AnswerPipeline defines the operation exposed by the application core.
type AnswerPipeline interface {
	Run(ctx context.Context, query string) (string, error)
}
