package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/querydoc/internal/querydoc/metrics"
	"github.com/kart-io/querydoc/internal/querydoc/store"
	"github.com/kart-io/querydoc/pkg/llm"
)

// Retriever finds the chunks most relevant to a query.
type Retriever struct {
	store    store.VectorStore
	embedder llm.EmbeddingProvider
	topK     int
}

// NewRetriever creates a retriever.
func NewRetriever(vs store.VectorStore, embedder llm.EmbeddingProvider, topK int) *Retriever {
	return &Retriever{
		store:    vs,
		embedder: embedder,
		topK:     topK,
	}
}

// Retrieve embeds the query and searches the namespace. Results with empty
// content are dropped; relative order is otherwise preserved.
func (r *Retriever) Retrieve(ctx context.Context, namespace, query string) ([]store.SearchResult, error) {
	qaMetrics := metrics.GetQAMetrics()
	start := time.Now()

	vector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		qaMetrics.RecordRetrieval(time.Since(start), err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.store.Search(ctx, namespace, vector, r.topK)
	qaMetrics.RecordRetrieval(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to search namespace %s: %w", namespace, err)
	}

	filtered := results[:0]
	for _, result := range results {
		if strings.TrimSpace(result.Content) == "" {
			continue
		}
		filtered = append(filtered, result)
	}

	return filtered, nil
}
