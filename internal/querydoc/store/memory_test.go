package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.EnsureNamespace(ctx, "qa_test", 3))

	chunks := []Chunk{
		{ID: "doc-0", DocumentID: "doc", Sequence: 0, Content: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "doc-1", DocumentID: "doc", Sequence: 1, Content: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "doc-2", DocumentID: "doc", Sequence: 2, Content: "gamma", Embedding: []float32{0, 0, 1}},
	}
	require.NoError(t, s.Upsert(ctx, "qa_test", chunks))

	count, err := s.Count(ctx, "qa_test")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	results, err := s.Search(ctx, "qa_test", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Content)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, "qa_test", []Chunk{
		{ID: "doc-0", Content: "old", Embedding: []float32{1, 0}},
	}))
	require.NoError(t, s.Upsert(ctx, "qa_test", []Chunk{
		{ID: "doc-0", Content: "new", Embedding: []float32{1, 0}},
	}))

	count, err := s.Count(ctx, "qa_test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	results, err := s.Search(ctx, "qa_test", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Content)
}

func TestMemoryStore_UnknownNamespace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	results, err := s.Search(ctx, "missing", []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	count, err := s.Count(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, count)

	exists, err := s.HasNamespace(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}
