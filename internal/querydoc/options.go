// Package querydoc assembles and runs the document QA service.
package querydoc

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	llmopts "github.com/kart-io/querydoc/pkg/options/llm"
	logopts "github.com/kart-io/querydoc/pkg/options/logger"
	milvusopts "github.com/kart-io/querydoc/pkg/options/milvus"
	qaopts "github.com/kart-io/querydoc/pkg/options/qa"
	httpopts "github.com/kart-io/querydoc/pkg/options/server/http"
)

// CacheOptions configures the Redis answer cache.
type CacheOptions struct {
	// Enabled turns the answer cache on.
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Addr is the Redis server address (host:port).
	Addr string `json:"addr" mapstructure:"addr"`
	// Password for authentication.
	Password string `json:"-" mapstructure:"password"`
	// DB is the Redis database index.
	DB int `json:"db" mapstructure:"db"`
	// TTL is the answer expiry.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`
}

// NewCacheOptions creates cache options with defaults. Caching is off by
// default.
func NewCacheOptions() *CacheOptions {
	return &CacheOptions{
		Enabled: false,
		Addr:    "localhost:6379",
		TTL:     time.Hour,
	}
}

// AddFlags adds flags for cache options to the specified FlagSet.
func (o *CacheOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "cache.enabled", o.Enabled, "Enable the Redis answer cache.")
	fs.StringVar(&o.Addr, "cache.addr", o.Addr, "Redis server address (host:port).")
	fs.StringVar(&o.Password, "cache.password", o.Password, "Redis password.")
	fs.IntVar(&o.DB, "cache.db", o.DB, "Redis database index.")
	fs.DurationVar(&o.TTL, "cache.ttl", o.TTL, "Answer cache TTL.")
}

// Options aggregates all service configuration.
type Options struct {
	HTTP      *httpopts.Options        `json:"http" mapstructure:"http"`
	Log       *logopts.Options         `json:"log" mapstructure:"log"`
	Milvus    *milvusopts.Options      `json:"milvus" mapstructure:"milvus"`
	QA        *qaopts.Options          `json:"qa" mapstructure:"qa"`
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`
	Chat      *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`
	Rewrite   *llmopts.ProviderOptions `json:"rewrite" mapstructure:"rewrite"`
	Cache     *CacheOptions            `json:"cache" mapstructure:"cache"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP:      httpopts.NewOptions(),
		Log:       logopts.NewOptions(),
		Milvus:    milvusopts.NewOptions(),
		QA:        qaopts.NewOptions(),
		Embedding: llmopts.NewEmbeddingOptions(),
		Chat:      llmopts.NewChatOptions(),
		Rewrite:   llmopts.NewProviderOptions(),
		Cache:     NewCacheOptions(),
	}
}

// AddFlags adds all option flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.QA.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Chat.AddFlags(fs, "chat")
	o.Rewrite.AddFlags(fs, "rewrite")
	o.Cache.AddFlags(fs)
}

// Validate validates all options.
func (o *Options) Validate() error {
	var errs []error

	errs = append(errs, o.HTTP.Validate()...)
	if err := o.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.QA.Validate()...)
	if o.QA.Store == qaopts.StoreMilvus {
		errs = append(errs, o.Milvus.Validate()...)
	}
	errs = append(errs, o.Embedding.Validate()...)
	errs = append(errs, o.Chat.Validate()...)
	if o.QA.RewriteEnabled {
		errs = append(errs, o.Rewrite.Validate()...)
	}

	return errors.Join(errs...)
}

// Complete completes options with derived defaults.
func (o *Options) Complete() error {
	if err := o.HTTP.Complete(); err != nil {
		return err
	}
	if err := o.QA.Complete(); err != nil {
		return err
	}
	if err := o.Embedding.Complete(); err != nil {
		return err
	}
	if err := o.Chat.Complete(); err != nil {
		return err
	}

	// The rewrite role reuses the synthesis backend unless configured.
	if o.QA.RewriteEnabled && o.Rewrite.Model == "" {
		*o.Rewrite = *o.Chat
	}
	return o.Rewrite.Complete()
}
