package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/querydoc/pkg/component/milvus"
)

const (
	fieldDocumentID = "document_id"
	fieldSequence   = "sequence"
	fieldContent    = "content"

	maxContentLength = 65535
)

// MilvusStore implements VectorStore backed by Milvus. Each namespace maps
// to one Milvus collection.
type MilvusStore struct {
	client *milvus.Client
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore creates a Milvus-backed vector store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// EnsureNamespace creates the backing collection when missing.
func (s *MilvusStore) EnsureNamespace(ctx context.Context, namespace string, dimension int) error {
	schema := &milvus.CollectionSchema{
		Name:        namespace,
		Description: "document chunks for question answering",
		Dimension:   dimension,
		MetaFields: []milvus.MetaField{
			{Name: fieldDocumentID, DataType: entity.FieldTypeVarChar, MaxLen: 128},
			{Name: fieldSequence, DataType: entity.FieldTypeInt64},
			{Name: fieldContent, DataType: entity.FieldTypeVarChar, MaxLen: maxContentLength},
		},
	}
	return s.client.EnsureCollection(ctx, schema)
}

// Upsert writes chunks into the collection.
func (s *MilvusStore) Upsert(ctx context.Context, namespace string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	data := &milvus.UpsertData{
		IDs:        make([]string, len(chunks)),
		Embeddings: make([][]float32, len(chunks)),
		Metadata: map[string][]any{
			fieldDocumentID: make([]any, len(chunks)),
			fieldSequence:   make([]any, len(chunks)),
			fieldContent:    make([]any, len(chunks)),
		},
	}

	for i, chunk := range chunks {
		data.IDs[i] = chunk.ID
		data.Embeddings[i] = chunk.Embedding
		data.Metadata[fieldDocumentID][i] = chunk.DocumentID
		data.Metadata[fieldSequence][i] = chunk.Sequence
		data.Metadata[fieldContent][i] = chunk.Content
	}

	return s.client.Upsert(ctx, namespace, data)
}

// Search performs a similarity search in the namespace.
func (s *MilvusStore) Search(ctx context.Context, namespace string, vector []float32, topK int) ([]SearchResult, error) {
	results, err := s.client.Search(ctx, namespace, vector, topK,
		[]string{fieldDocumentID, fieldSequence, fieldContent})
	if err != nil {
		return nil, err
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, r := range results {
		sr := SearchResult{Score: r.Score}
		sr.ID = r.ID
		if v, ok := r.Metadata[fieldDocumentID].(string); ok {
			sr.DocumentID = v
		}
		if v, ok := r.Metadata[fieldSequence].(int64); ok {
			sr.Sequence = v
		}
		if v, ok := r.Metadata[fieldContent].(string); ok {
			sr.Content = v
		}
		searchResults = append(searchResults, sr)
	}

	return searchResults, nil
}

// Count returns the number of chunks in the namespace.
func (s *MilvusStore) Count(ctx context.Context, namespace string) (int64, error) {
	exists, err := s.client.HasCollection(ctx, namespace)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	return s.client.GetCollectionStats(ctx, namespace)
}

// HasNamespace reports whether the backing collection exists.
func (s *MilvusStore) HasNamespace(ctx context.Context, namespace string) (bool, error) {
	return s.client.HasCollection(ctx, namespace)
}

// Close closes the Milvus client.
func (s *MilvusStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(ctx); err != nil {
		return fmt.Errorf("failed to close milvus client: %w", err)
	}
	return nil
}
