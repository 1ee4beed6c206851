package querydoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qaopts "github.com/kart-io/querydoc/pkg/options/qa"
)

func TestOptions_DefaultsAreValid(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Complete())
	assert.NoError(t, opts.Validate())
}

func TestOptions_OverlapMustBeSmallerThanChunkSize(t *testing.T) {
	opts := NewOptions()
	opts.QA.ChunkOverlap = opts.QA.ChunkSize

	require.NoError(t, opts.Complete())
	err := opts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk-overlap")
}

func TestOptions_UnknownStoreRejected(t *testing.T) {
	opts := NewOptions()
	opts.QA.Store = "postgres"

	require.NoError(t, opts.Complete())
	assert.Error(t, opts.Validate())
}

func TestOptions_MemoryStoreSkipsMilvusValidation(t *testing.T) {
	opts := NewOptions()
	opts.QA.Store = qaopts.StoreMemory
	opts.Milvus.Address = ""

	require.NoError(t, opts.Complete())
	assert.NoError(t, opts.Validate())
}

func TestOptions_OpenAIRequiresAPIKey(t *testing.T) {
	opts := NewOptions()
	opts.Chat.Provider = "openai"
	opts.Chat.BaseURL = "https://api.openai.com/v1"
	opts.Chat.Model = "gpt-4o-mini"

	require.NoError(t, opts.Complete())
	err := opts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api-key")
}

func TestOptions_RewriteInheritsChatBackend(t *testing.T) {
	opts := NewOptions()
	opts.QA.RewriteEnabled = true
	opts.Rewrite.Model = ""

	require.NoError(t, opts.Complete())
	assert.Equal(t, opts.Chat.Model, opts.Rewrite.Model)
	assert.NoError(t, opts.Validate())
}
