package querydoc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/redis/go-redis/v9"

	"github.com/kart-io/querydoc/internal/querydoc/biz"
	"github.com/kart-io/querydoc/internal/querydoc/handler"
	"github.com/kart-io/querydoc/internal/querydoc/router"
	"github.com/kart-io/querydoc/internal/querydoc/store"
	"github.com/kart-io/querydoc/pkg/component/milvus"
	"github.com/kart-io/querydoc/pkg/llm"
	qaopts "github.com/kart-io/querydoc/pkg/options/qa"

	// Register LLM providers.
	_ "github.com/kart-io/querydoc/pkg/llm/gemini"
	_ "github.com/kart-io/querydoc/pkg/llm/ollama"
	_ "github.com/kart-io/querydoc/pkg/llm/openai"
)

// Run starts the QA service and blocks until shutdown.
func Run(opts *Options) error {
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Infow("Starting querydoc service",
		"addr", opts.HTTP.Addr,
		"store", opts.QA.Store,
		"embedding_provider", opts.Embedding.Provider,
		"chat_provider", opts.Chat.Provider,
	)

	vs, err := buildStore(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %w", err)
	}
	defer func() {
		if err := vs.Close(context.Background()); err != nil {
			logger.Warnw("Failed to close vector store", "error", err.Error())
		}
	}()
	logger.Info("Vector store initialized")

	embedder, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	chat, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to create chat provider: %w", err)
	}

	var rewriteChat llm.ChatProvider
	if opts.QA.RewriteEnabled {
		rewriteChat, err = llm.NewChatProvider(opts.Rewrite.Provider, opts.Rewrite.ToConfigMap())
		if err != nil {
			return fmt.Errorf("failed to create rewrite provider: %w", err)
		}
	}
	logger.Info("LLM providers initialized")

	cache := biz.NewNoopCache()
	if opts.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     opts.Cache.Addr,
			Password: opts.Cache.Password,
			DB:       opts.Cache.DB,
		})
		defer func() { _ = redisClient.Close() }()
		cache = biz.NewRedisCache(redisClient, opts.Cache.TTL)
		logger.Infow("Answer cache enabled", "addr", opts.Cache.Addr)
	}

	indexer, err := biz.NewIndexer(vs, embedder, &biz.IndexerConfig{
		ChunkSize:        opts.QA.ChunkSize,
		ChunkOverlap:     opts.QA.ChunkOverlap,
		EmbeddingDim:     opts.QA.EmbeddingDim,
		EmbedConcurrency: opts.QA.EmbedConcurrency,
		SettleDelay:      opts.QA.SettleDelay,
		SettleTimeout:    opts.QA.SettleTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	svc, err := biz.NewService(
		biz.NewDocumentFetcher(opts.QA.FetchTimeout),
		biz.NewPDFParser(),
		indexer,
		biz.NewPlanner(rewriteChat, opts.QA.RewriteEnabled),
		biz.NewRetriever(vs, embedder, opts.QA.TopK),
		biz.NewSynthesizer(chat),
		cache,
		vs,
		&biz.Config{
			NamespacePrefix:     opts.QA.NamespacePrefix,
			DataDir:             opts.QA.DataDir,
			MaxContextChars:     opts.QA.MaxContextChars,
			QuestionConcurrency: opts.QA.QuestionConcurrency,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create qa service: %w", err)
	}
	defer svc.Close()
	logger.Info("QA service initialized")

	gin.SetMode(opts.HTTP.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Register(engine, handler.NewQAHandler(svc))

	srv := &http.Server{
		Addr:         opts.HTTP.Addr,
		Handler:      engine,
		ReadTimeout:  opts.HTTP.ReadTimeout,
		WriteTimeout: opts.HTTP.WriteTimeout,
		IdleTimeout:  opts.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Infow("HTTP server listening", "addr", opts.HTTP.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		logger.Infow("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func buildStore(opts *Options) (store.VectorStore, error) {
	switch opts.QA.Store {
	case qaopts.StoreMemory:
		return store.NewMemoryStore(), nil
	case qaopts.StoreMilvus:
		client, err := milvus.New(opts.Milvus)
		if err != nil {
			return nil, err
		}
		return store.NewMilvusStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", opts.QA.Store)
	}
}
