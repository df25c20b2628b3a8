package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipechat/internal/domain"
)

func writeFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foods.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestFileLoader_Load(t *testing.T) {
	path := writeFile(t, `{"text":"Greek yogurt, 10g protein per 100g"}

{"text":"Rolled oats, high fiber","code":"42"}
`)
	docs, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, domain.Document{ID: "000000000", Content: "Greek yogurt, 10g protein per 100g"}, docs[0])
	assert.Equal(t, "000000001", docs[1].ID)
}

func TestFileLoader_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.jsonl") }},
		{"invalid json", func(t *testing.T) string { return writeFile(t, "{not json\n") }},
		{"missing text", func(t *testing.T) string { return writeFile(t, `{"name":"oats"}`+"\n") }},
		{"non-string text", func(t *testing.T) string { return writeFile(t, `{"text":12}`+"\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileLoader(tt.path(t)).Load(context.Background())
			var loadErr *domain.DatasetLoadError
			assert.True(t, errors.As(err, &loadErr), "got %v", err)
		})
	}
}

func TestDocumentIDOrdersLexically(t *testing.T) {
	assert.Less(t, DocumentID(9), DocumentID(10))
	assert.Equal(t, "000000123", DocumentID(123))
}
