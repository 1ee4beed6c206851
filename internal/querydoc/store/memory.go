package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kart-io/querydoc/internal/pkg/qa/textutil"
)

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. Intended for development and tests; data is lost on restart.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]Chunk
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		namespaces: make(map[string]map[string]Chunk),
	}
}

// EnsureNamespace creates the namespace when missing.
func (s *MemoryStore) EnsureNamespace(_ context.Context, namespace string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[namespace]; !ok {
		s.namespaces[namespace] = make(map[string]Chunk)
	}
	return nil
}

// Upsert writes chunks, overwriting entries with the same ID.
func (s *MemoryStore) Upsert(_ context.Context, namespace string, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]Chunk)
		s.namespaces[namespace] = ns
	}

	for _, chunk := range chunks {
		ns[chunk.ID] = chunk
	}
	return nil
}

// Search scans the namespace and returns the topK most similar chunks.
func (s *MemoryStore) Search(_ context.Context, namespace string, vector []float32, topK int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(ns))
	for _, chunk := range ns {
		score := float32(textutil.CosineSimilarity(vector, chunk.Embedding))
		results = append(results, SearchResult{Chunk: chunk, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of chunks in a namespace.
func (s *MemoryStore) Count(_ context.Context, namespace string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.namespaces[namespace])), nil
}

// HasNamespace reports whether the namespace exists.
func (s *MemoryStore) HasNamespace(_ context.Context, namespace string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.namespaces[namespace]
	return ok, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}
