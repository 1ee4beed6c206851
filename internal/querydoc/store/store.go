// Package store defines the vector store abstraction used for document
// chunk indexing and retrieval.
package store

import "context"

// Chunk is a single indexed fragment of a document.
type Chunk struct {
	// ID is the deterministic chunk identifier, derived from the document
	// and the chunk position. Re-indexing the same document overwrites
	// rows instead of duplicating them.
	ID string

	// DocumentID identifies the source document.
	DocumentID string

	// Sequence is the zero-based position of the chunk in the document.
	Sequence int64

	// Content is the chunk text.
	Content string

	// Embedding is the chunk's vector representation.
	Embedding []float32
}

// SearchResult is a chunk returned from a similarity search.
type SearchResult struct {
	Chunk
	// Score is the similarity score; higher is more similar.
	Score float32
}

// VectorStore stores and searches document chunks grouped by namespace.
// A namespace isolates the chunks of one document.
type VectorStore interface {
	// EnsureNamespace prepares a namespace for chunks of the given
	// embedding dimension. Idempotent.
	EnsureNamespace(ctx context.Context, namespace string, dimension int) error

	// Upsert writes chunks into a namespace, overwriting chunks with the
	// same ID.
	Upsert(ctx context.Context, namespace string, chunks []Chunk) error

	// Search returns up to topK chunks most similar to the query vector,
	// ordered by descending score.
	Search(ctx context.Context, namespace string, vector []float32, topK int) ([]SearchResult, error)

	// Count returns the number of chunks stored in a namespace.
	Count(ctx context.Context, namespace string) (int64, error)

	// HasNamespace reports whether the namespace exists.
	HasNamespace(ctx context.Context, namespace string) (bool, error)

	// Close releases store resources.
	Close(ctx context.Context) error
}
