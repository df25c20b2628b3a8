package dataset

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"recipechat/internal/domain"
)

// FileLoader reads a local JSON Lines file where every record carries a text field.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the JSON Lines file at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load returns one document per non-blank line.
func (l *FileLoader) Load(ctx context.Context) ([]domain.Document, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, &domain.DatasetLoadError{Source: l.path, Err: err}
	}
	defer f.Close()

	var docs []domain.Document
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, &domain.DatasetLoadError{Source: l.path, Err: err}
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		if !gjson.Valid(raw) {
			return nil, &domain.DatasetLoadError{Source: l.path, Err: fmt.Errorf("line %d: invalid JSON", line)}
		}
		text := gjson.Get(raw, "text")
		if text.Type != gjson.String {
			return nil, &domain.DatasetLoadError{Source: l.path, Err: fmt.Errorf("line %d: no text field", line)}
		}
		docs = append(docs, domain.Document{ID: DocumentID(len(docs)), Content: text.String()})
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.DatasetLoadError{Source: l.path, Err: err}
	}
	return docs, nil
}
