package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQAMetrics_Stats(t *testing.T) {
	m := GetQAMetrics()
	m.Reset()

	m.RecordBatch(nil)
	m.RecordBatch(errors.New("boom"))

	m.RecordQuestion(true, nil)
	m.RecordQuestion(false, nil)
	m.RecordQuestion(false, errors.New("boom"))

	m.RecordCacheHit(true)
	m.RecordCacheHit(false)

	m.RecordRetrieval(100*time.Millisecond, nil)
	m.RecordLLMCall(200*time.Millisecond, 10, 5, nil)
	m.RecordIndexing(1, 42, nil)

	stats := m.Stats()

	batches := stats["batches"].(map[string]interface{})
	assert.Equal(t, uint64(2), batches["total"])
	assert.Equal(t, uint64(1), batches["errors"])

	questions := stats["questions"].(map[string]interface{})
	assert.Equal(t, uint64(3), questions["total"])
	assert.Equal(t, uint64(1), questions["grounded"])
	assert.Equal(t, uint64(1), questions["errors"])
	assert.InDelta(t, 0.5, questions["cache_hit_rate"].(float64), 1e-9)

	llm := stats["llm"].(map[string]interface{})
	assert.Equal(t, uint64(1), llm["calls_total"])
	assert.Equal(t, uint64(10), llm["tokens_prompt"])
	assert.Equal(t, uint64(5), llm["tokens_completion"])

	indexing := stats["indexing"].(map[string]interface{})
	assert.Equal(t, uint64(1), indexing["documents_indexed"])
	assert.Equal(t, uint64(42), indexing["chunks_indexed"])
}

func TestQAMetrics_Singleton(t *testing.T) {
	require.Same(t, GetQAMetrics(), GetQAMetrics())
}
