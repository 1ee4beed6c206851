// Package biz implements the document question answering pipeline.
package biz

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/querydoc/internal/model"
	"github.com/kart-io/querydoc/internal/pkg/qa/docutil"
	"github.com/kart-io/querydoc/internal/pkg/qa/textutil"
	"github.com/kart-io/querydoc/internal/querydoc/metrics"
	"github.com/kart-io/querydoc/internal/querydoc/store"
	"github.com/kart-io/querydoc/pkg/infra/pool"
)

// documentIDLength is the number of URL hash hex characters used to
// identify a document.
const documentIDLength = 16

// Config holds service-level settings.
type Config struct {
	NamespacePrefix     string
	DataDir             string
	MaxContextChars     int
	QuestionConcurrency int
}

// Service answers batches of questions about a remote document.
type Service interface {
	// Run downloads and indexes the document when needed, then answers the
	// questions. Answers are positionally aligned with the questions. The
	// first failing question fails the whole batch.
	Run(ctx context.Context, documentsURL string, questions []string) ([]string, error)

	// Stats returns service metrics.
	Stats(ctx context.Context) map[string]interface{}

	// Close releases worker pools.
	Close()
}

type qaService struct {
	fetcher     DocumentFetcher
	parser      DocumentParser
	indexer     *Indexer
	planner     *Planner
	retriever   *Retriever
	synthesizer *Synthesizer
	cache       AnswerCache
	store       store.VectorStore
	cfg         *Config
	pool        *pool.Pool

	// ingestMu serializes first-time ingestion so concurrent requests for
	// the same document do not race the emptiness check.
	ingestMu sync.Mutex
}

// NewService wires the QA pipeline together.
func NewService(
	fetcher DocumentFetcher,
	parser DocumentParser,
	indexer *Indexer,
	planner *Planner,
	retriever *Retriever,
	synthesizer *Synthesizer,
	cache AnswerCache,
	vs store.VectorStore,
	cfg *Config,
) (Service, error) {
	p, err := pool.NewPool("qa-questions", pool.QuestionPool, pool.BoundedPoolConfig(cfg.QuestionConcurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to create question pool: %w", err)
	}

	return &qaService{
		fetcher:     fetcher,
		parser:      parser,
		indexer:     indexer,
		planner:     planner,
		retriever:   retriever,
		synthesizer: synthesizer,
		cache:       cache,
		store:       vs,
		cfg:         cfg,
		pool:        p,
	}, nil
}

func (s *qaService) Close() {
	s.pool.Release()
	s.indexer.Close()
}

func (s *qaService) Run(ctx context.Context, documentsURL string, questions []string) ([]string, error) {
	qaMetrics := metrics.GetQAMetrics()
	start := time.Now()

	if err := validateRequest(documentsURL, questions); err != nil {
		qaMetrics.RecordBatch(err)
		return nil, err
	}

	if len(questions) == 0 {
		qaMetrics.RecordBatch(nil)
		return []string{}, nil
	}

	docID := textutil.HashString(documentsURL)[:documentIDLength]
	namespace := s.cfg.NamespacePrefix + docID

	if err := s.ensureIngested(ctx, documentsURL, namespace, docID); err != nil {
		qaMetrics.RecordBatch(err)
		return nil, err
	}

	records := make([]model.AnswerRecord, len(questions))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, question := range questions {
		i, question := i, question
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			record, err := s.answerQuestion(runCtx, namespace, question)
			qaMetrics.RecordQuestion(record.Grounded, err)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = &SynthesisError{Question: question, Err: err}
					cancel()
				}
				mu.Unlock()
				return
			}

			records[i] = record
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = &SynthesisError{Question: question, Err: submitErr}
				cancel()
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		qaMetrics.RecordBatch(firstErr)
		return nil, firstErr
	}

	batch := model.BatchMetrics{
		Questions:    len(questions),
		TotalLatency: time.Since(start),
	}
	answers := make([]string, len(questions))
	for i, record := range records {
		answers[i] = record.Answer
		if record.Grounded {
			batch.Grounded++
		}
	}

	logger.Infow("Answered question batch",
		"namespace", namespace,
		"questions", batch.Questions,
		"grounded", batch.Grounded,
		"accuracy", batch.Accuracy(),
		"avg_latency", batch.AvgLatency().String(),
		"elapsed", batch.TotalLatency.String(),
	)
	qaMetrics.RecordBatch(nil)

	return answers, nil
}

func (s *qaService) Stats(_ context.Context) map[string]interface{} {
	return metrics.GetQAMetrics().Stats()
}

// ensureIngested indexes the document unless its namespace already holds
// chunks from an earlier request.
func (s *qaService) ensureIngested(ctx context.Context, documentsURL, namespace, docID string) error {
	if s.namespacePopulated(ctx, namespace) {
		return nil
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	// Another request may have finished ingestion while we waited.
	if s.namespacePopulated(ctx, namespace) {
		return nil
	}

	return s.ingest(ctx, documentsURL, namespace, docID)
}

func (s *qaService) namespacePopulated(ctx context.Context, namespace string) bool {
	count, err := s.store.Count(ctx, namespace)
	if err != nil {
		logger.Warnw("Namespace count failed, assuming empty",
			"namespace", namespace,
			"error", err.Error(),
		)
		return false
	}
	if count > 0 {
		logger.Infow("Document already indexed, skipping ingestion",
			"namespace", namespace,
			"chunks", count,
		)
		return true
	}
	return false
}

// ingest downloads, extracts and indexes the document. The downloaded file
// is removed as soon as its text is extracted, and the deferred removal
// covers every failure path.
func (s *qaService) ingest(ctx context.Context, documentsURL, namespace, docID string) error {
	qaMetrics := metrics.GetQAMetrics()

	if err := docutil.EnsureDir(s.cfg.DataDir); err != nil {
		return &FetchError{URL: documentsURL, Err: err}
	}

	docPath := docutil.TempDocPath(s.cfg.DataDir, ".pdf")
	defer func() {
		if err := docutil.Remove(docPath); err != nil {
			logger.Warnw("Failed to remove temp document",
				"path", docPath,
				"error", err.Error(),
			)
		}
	}()

	logger.Infow("Fetching document", "url", documentsURL, "path", docPath)
	if err := s.fetcher.Fetch(ctx, documentsURL, docPath); err != nil {
		qaMetrics.RecordIndexing(0, 0, err)
		return err
	}

	text, err := s.parser.Extract(ctx, docPath)
	if err != nil {
		qaMetrics.RecordIndexing(0, 0, err)
		return err
	}

	// The raw file is no longer needed once the text is out.
	if err := docutil.Remove(docPath); err != nil {
		logger.Warnw("Failed to remove temp document",
			"path", docPath,
			"error", err.Error(),
		)
	}

	chunkCount, err := s.indexer.Index(ctx, namespace, docID, text)
	qaMetrics.RecordIndexing(1, chunkCount, err)
	if err != nil {
		return err
	}

	logger.Infow("Document indexed",
		"namespace", namespace,
		"chunks", chunkCount,
	)
	return nil
}

func (s *qaService) answerQuestion(ctx context.Context, namespace, question string) (model.AnswerRecord, error) {
	qaMetrics := metrics.GetQAMetrics()
	start := time.Now()

	if answer, ok := s.cache.Get(ctx, namespace, question); ok {
		qaMetrics.RecordCacheHit(true)
		return model.AnswerRecord{
			Question: question,
			Answer:   answer,
			Grounded: !IsNotMentioned(answer),
			Elapsed:  time.Since(start),
		}, nil
	}
	qaMetrics.RecordCacheHit(false)

	query := s.planner.Plan(ctx, question)

	results, err := s.retriever.Retrieve(ctx, namespace, query)
	if err != nil {
		return model.AnswerRecord{}, err
	}

	contextText := AssembleContext(results, s.cfg.MaxContextChars)

	answer, grounded, err := s.synthesizer.Synthesize(ctx, question, contextText)
	if err != nil {
		return model.AnswerRecord{}, err
	}

	s.cache.Set(ctx, namespace, question, answer)
	return model.AnswerRecord{
		Question: question,
		Answer:   answer,
		Grounded: grounded,
		Elapsed:  time.Since(start),
	}, nil
}

func validateRequest(documentsURL string, questions []string) error {
	if strings.TrimSpace(documentsURL) == "" {
		return NewValidationError("documents url is required")
	}

	u, err := url.Parse(documentsURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError("documents url must be a valid http or https url")
	}

	for i, question := range questions {
		if strings.TrimSpace(question) == "" {
			return NewValidationError("question %d is empty", i)
		}
	}

	return nil
}
