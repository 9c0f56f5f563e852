package retrieval

import (
	"context"
	"sort"
	"sync"
)

// Document is one policy clause held in the vector store. Score is the
// store's own similarity for the issued query; callers are expected to
// recompute similarity themselves when ranking matters.
type Document struct {
	ID       string
	Text     string
	Score    float64
	Metadata map[string]string
}

// Store is the nearest-neighbor lookup interface for policy clauses
type Store interface {
	Query(ctx context.Context, embedding []float32, topN int) ([]Document, error)
}

type storedDoc struct {
	doc Document
	vec []float32
}

// MemoryStore is a brute-force cosine similarity store. The policy
// corpus is small enough that exact search beats index maintenance.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []storedDoc
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add inserts a document with its embedding vector
func (s *MemoryStore) Add(id, text string, embedding []float32, metadata map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, storedDoc{
		doc: Document{ID: id, Text: text, Metadata: metadata},
		vec: embedding,
	})
}

// Count returns the number of stored documents
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Query returns the topN documents by cosine similarity, best first
func (s *MemoryStore) Query(_ context.Context, embedding []float32, topN int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Document, 0, len(s.docs))
	for _, stored := range s.docs {
		doc := stored.doc
		doc.Score = Cosine(embedding, stored.vec)
		results = append(results, doc)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}
