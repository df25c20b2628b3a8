// Package memory provides a dependency-free BM25 implementation of docstore.Storage.
package memory

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"recipechat/internal/docstore"
	"recipechat/internal/domain"
)

// Okapi BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

// Storage ranks documents with Okapi BM25 over a unicode word tokenizer.
type Storage struct {
	mu           sync.RWMutex
	docs         []domain.Document
	termFreqs    []map[string]int
	lengths      []int
	docFreq      map[string]int
	totalLength  int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

var _ docstore.Storage = (*Storage)(nil)

func NewStorage() *Storage {
	return &Storage{
		docFreq:      make(map[string]int),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

func (s *Storage) Index(ctx context.Context, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		tokens := s.tokenize(d.Content)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			s.docFreq[term]++
		}
		s.docs = append(s.docs, d)
		s.termFreqs = append(s.termFreqs, tf)
		s.lengths = append(s.lengths, len(tokens))
		s.totalLength += len(tokens)
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = docstore.DefaultTopK
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.docs) == 0 {
		return nil, nil
	}
	terms := unique(s.tokenize(query))
	if len(terms) == 0 {
		return nil, nil
	}
	n := float64(len(s.docs))
	avgLen := float64(s.totalLength) / n
	idf := make(map[string]float64, len(terms))
	for _, t := range terms {
		df := float64(s.docFreq[t])
		// Lucene-style IDF keeps scores non-negative for very common terms
		idf[t] = math.Log(1 + (n-df+0.5)/(df+0.5))
	}
	type pair struct {
		idx   int
		score float64
	}
	var scores []pair
	for i, tf := range s.termFreqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score := 0.0
		for _, t := range terms {
			f := float64(tf[t])
			if f == 0 {
				continue
			}
			norm := k1 * (1 - b + b*float64(s.lengths[i])/avgLen)
			score += idf[t] * f * (k1 + 1) / (f + norm)
		}
		if score > 0 {
			scores = append(scores, pair{i, score})
		}
	}
	// Stable sort keeps load order among equal scores
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		p := scores[i]
		out = append(out, domain.SearchResult{Document: s.docs[p.idx], Score: p.score})
	}
	return out, nil
}

func (s *Storage) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.docs)), nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	s.termFreqs = nil
	s.lengths = nil
	s.docFreq = make(map[string]int)
	s.totalLength = 0
	return nil
}

func (s *Storage) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := s.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
