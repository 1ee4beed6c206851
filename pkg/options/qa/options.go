// Package qa provides document question-answering pipeline options.
package qa

import (
	"fmt"
	"time"

	"github.com/kart-io/querydoc/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Store driver names.
const (
	StoreMilvus = "milvus"
	StoreMemory = "memory"
)

// Options contains the question-answering pipeline configuration.
type Options struct {
	// ChunkSize is the chunk window size in Unicode characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between adjacent chunks in characters.
	// Must be strictly smaller than ChunkSize.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of candidate chunks retrieved per question.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// MaxContextChars bounds the assembled context passed to synthesis.
	MaxContextChars int `json:"max-context-chars" mapstructure:"max-context-chars"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// RewriteEnabled turns on LLM query rewriting before retrieval.
	RewriteEnabled bool `json:"rewrite-enabled" mapstructure:"rewrite-enabled"`

	// Store selects the vector store driver (milvus or memory).
	Store string `json:"store" mapstructure:"store"`

	// DataDir is the directory for request-scoped temporary documents.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// NamespacePrefix prefixes per-document namespaces in the store.
	NamespacePrefix string `json:"namespace-prefix" mapstructure:"namespace-prefix"`

	// EmbedConcurrency bounds concurrent embedding batches during indexing.
	EmbedConcurrency int `json:"embed-concurrency" mapstructure:"embed-concurrency"`

	// QuestionConcurrency bounds concurrent per-question pipelines.
	QuestionConcurrency int `json:"question-concurrency" mapstructure:"question-concurrency"`

	// SettleDelay is the fallback wait after indexing when the store
	// cannot report entity counts.
	SettleDelay time.Duration `json:"settle-delay" mapstructure:"settle-delay"`

	// SettleTimeout bounds the post-index visibility polling loop.
	SettleTimeout time.Duration `json:"settle-timeout" mapstructure:"settle-timeout"`

	// FetchTimeout bounds the document download.
	FetchTimeout time.Duration `json:"fetch-timeout" mapstructure:"fetch-timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:           1000,
		ChunkOverlap:        200,
		TopK:                5,
		MaxContextChars:     8000,
		EmbeddingDim:        768,
		RewriteEnabled:      false,
		Store:               StoreMilvus,
		DataDir:             "_output/qa-data",
		NamespacePrefix:     "qa_",
		EmbedConcurrency:    4,
		QuestionConcurrency: 8,
		SettleDelay:         2 * time.Second,
		SettleTimeout:       30 * time.Second,
		FetchTimeout:        60 * time.Second,
	}
}

// AddFlags adds flags for QA options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...)
	fs.IntVar(&o.ChunkSize, prefix+"qa.chunk-size", o.ChunkSize, "Chunk window size in characters.")
	fs.IntVar(&o.ChunkOverlap, prefix+"qa.chunk-overlap", o.ChunkOverlap, "Overlap between adjacent chunks.")
	fs.IntVar(&o.TopK, prefix+"qa.top-k", o.TopK, "Number of chunks retrieved per question.")
	fs.IntVar(&o.MaxContextChars, prefix+"qa.max-context-chars", o.MaxContextChars, "Character budget for the synthesis context.")
	fs.IntVar(&o.EmbeddingDim, prefix+"qa.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.BoolVar(&o.RewriteEnabled, prefix+"qa.rewrite-enabled", o.RewriteEnabled, "Enable LLM query rewriting before retrieval.")
	fs.StringVar(&o.Store, prefix+"qa.store", o.Store, "Vector store driver (milvus, memory).")
	fs.StringVar(&o.DataDir, prefix+"qa.data-dir", o.DataDir, "Directory for temporary documents.")
	fs.StringVar(&o.NamespacePrefix, prefix+"qa.namespace-prefix", o.NamespacePrefix, "Prefix for per-document store namespaces.")
	fs.IntVar(&o.EmbedConcurrency, prefix+"qa.embed-concurrency", o.EmbedConcurrency, "Concurrent embedding batches during indexing.")
	fs.IntVar(&o.QuestionConcurrency, prefix+"qa.question-concurrency", o.QuestionConcurrency, "Concurrent per-question pipelines.")
	fs.DurationVar(&o.SettleDelay, prefix+"qa.settle-delay", o.SettleDelay, "Fallback wait after indexing.")
	fs.DurationVar(&o.SettleTimeout, prefix+"qa.settle-timeout", o.SettleTimeout, "Bound for post-index visibility polling.")
	fs.DurationVar(&o.FetchTimeout, prefix+"qa.fetch-timeout", o.FetchTimeout, "Timeout for the document download.")
}

// Validate validates the QA options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("qa.chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("qa.chunk-overlap must not be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("qa.chunk-overlap must be smaller than qa.chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("qa.top-k must be positive"))
	}
	if o.MaxContextChars <= 0 {
		errs = append(errs, fmt.Errorf("qa.max-context-chars must be positive"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("qa.embedding-dim must be positive"))
	}
	if o.Store != StoreMilvus && o.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("qa.store must be one of: milvus, memory"))
	}
	if o.EmbedConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("qa.embed-concurrency must be positive"))
	}
	if o.QuestionConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("qa.question-concurrency must be positive"))
	}
	return errs
}

// Complete completes the QA options with defaults.
func (o *Options) Complete() error {
	if o.NamespacePrefix == "" {
		o.NamespacePrefix = "qa_"
	}
	return nil
}
