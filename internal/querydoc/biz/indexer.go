package biz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/querydoc/internal/pkg/qa/textutil"
	"github.com/kart-io/querydoc/internal/querydoc/store"
	"github.com/kart-io/querydoc/pkg/infra/pool"
	"github.com/kart-io/querydoc/pkg/llm"
)

const (
	defaultEmbedBatchSize = 16
	settlePollInterval    = 200 * time.Millisecond
)

// IndexerConfig configures chunking, embedding and index settling.
type IndexerConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	EmbeddingDim     int
	EmbedConcurrency int
	EmbedBatchSize   int
	SettleDelay      time.Duration
	SettleTimeout    time.Duration
}

// Indexer chunks document text, embeds the chunks concurrently and writes
// them into the vector store.
type Indexer struct {
	store    store.VectorStore
	embedder llm.EmbeddingProvider
	cfg      *IndexerConfig
	pool     *pool.Pool
}

// NewIndexer creates an indexer with a bounded embedding worker pool.
func NewIndexer(vs store.VectorStore, embedder llm.EmbeddingProvider, cfg *IndexerConfig) (*Indexer, error) {
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = defaultEmbedBatchSize
	}

	p, err := pool.NewPool("qa-embed", pool.EmbeddingPool, pool.BoundedPoolConfig(cfg.EmbedConcurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding pool: %w", err)
	}

	return &Indexer{
		store:    vs,
		embedder: embedder,
		cfg:      cfg,
		pool:     p,
	}, nil
}

// Close releases the embedding worker pool.
func (ix *Indexer) Close() {
	ix.pool.Release()
}

// Index chunks and indexes document text into a namespace. Chunk IDs are
// derived from the document ID and chunk position, so re-indexing the same
// document overwrites rows instead of duplicating them. Returns the number
// of chunks indexed.
func (ix *Indexer) Index(ctx context.Context, namespace, documentID, text string) (int, error) {
	pieces := textutil.SplitIntoChunks(text, ix.cfg.ChunkSize, ix.cfg.ChunkOverlap)

	texts := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		texts = append(texts, piece)
	}
	if len(texts) == 0 {
		return 0, &IndexingError{Stage: "chunking", Err: fmt.Errorf("document produced no usable chunks")}
	}

	if err := ix.store.EnsureNamespace(ctx, namespace, ix.cfg.EmbeddingDim); err != nil {
		return 0, &IndexingError{Stage: "namespace", Err: err}
	}

	embeddings, err := ix.embedAll(ctx, texts)
	if err != nil {
		return 0, &IndexingError{Stage: "embedding", Err: err}
	}

	chunks := make([]store.Chunk, len(texts))
	for i, content := range texts {
		if len(embeddings[i]) != ix.cfg.EmbeddingDim {
			return 0, &IndexingError{
				Stage: "embedding",
				Err: fmt.Errorf("embedding dimension mismatch: got %d, want %d",
					len(embeddings[i]), ix.cfg.EmbeddingDim),
			}
		}
		chunks[i] = store.Chunk{
			ID:         fmt.Sprintf("%s-%d", documentID, i),
			DocumentID: documentID,
			Sequence:   int64(i),
			Content:    content,
			Embedding:  embeddings[i],
		}
	}

	if err := ix.store.Upsert(ctx, namespace, chunks); err != nil {
		return 0, &IndexingError{Stage: "storage", Err: err}
	}

	ix.settle(ctx, namespace, int64(len(chunks)))

	return len(chunks), nil
}

// embedAll embeds texts in fixed-size batches fanned out over the worker
// pool. Result order matches input order.
func (ix *Indexer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	batchSize := ix.cfg.EmbedBatchSize
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		offset := start

		wg.Add(1)
		submitErr := ix.pool.Submit(func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			vecs, err := ix.embedder.Embed(ctx, batch)
			if err == nil && len(vecs) != len(batch) {
				err = fmt.Errorf("embedding count mismatch: got %d, want %d", len(vecs), len(batch))
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for i, vec := range vecs {
				embeddings[offset+i] = vec
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return embeddings, nil
}

// settle waits for upserted chunks to become searchable. It polls the
// namespace count until it reaches the expected size, bounded by the settle
// timeout. When the store cannot report a count, a fixed delay is used.
func (ix *Indexer) settle(ctx context.Context, namespace string, expected int64) {
	deadline := time.Now().Add(ix.cfg.SettleTimeout)

	for time.Now().Before(deadline) {
		count, err := ix.store.Count(ctx, namespace)
		if err != nil {
			logger.Warnw("Namespace count failed during settle, using fixed delay",
				"namespace", namespace,
				"error", err.Error(),
			)
			select {
			case <-ctx.Done():
			case <-time.After(ix.cfg.SettleDelay):
			}
			return
		}
		if count >= expected {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(settlePollInterval):
		}
	}

	logger.Warnw("Index settle timed out, proceeding with partial visibility",
		"namespace", namespace,
		"expected", expected,
	)
}
