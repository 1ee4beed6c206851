package biz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/querydoc/internal/pkg/qa/textutil"
	"github.com/kart-io/querydoc/internal/querydoc/store"
	"github.com/kart-io/querydoc/pkg/llm"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = embedText(text)
	}
	return vecs, nil
}

func (fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return embedText(text), nil
}

func (fakeEmbedder) Name() string { return "fake-embedder" }

func embedText(text string) []float32 {
	return []float32{1, float32(len(text) % 5), float32(len(text) % 3)}
}

// echoChat answers with the question it finds in the prompt, so order can
// be asserted after concurrent fan-out.
type echoChat struct {
	calls atomic.Int64
}

func (e *echoChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return "", errors.New("not used")
}

func (e *echoChat) Generate(_ context.Context, prompt, _ string) (*llm.GenerateResponse, error) {
	e.calls.Add(1)
	idx := strings.Index(prompt, "Question: ")
	if idx < 0 {
		return nil, fmt.Errorf("prompt missing question: %q", prompt)
	}
	q := prompt[idx+len("Question: "):]
	q = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(q), "Answer:"))
	return &llm.GenerateResponse{Content: "echo: " + q}, nil
}

func (e *echoChat) Name() string { return "echo" }

type fakeFetcher struct {
	calls atomic.Int64
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, url, destPath string) error {
	f.calls.Add(1)
	if f.err != nil {
		return &FetchError{URL: url, Err: f.err}
	}
	return os.WriteFile(destPath, []byte("raw document bytes"), 0o644)
}

type fakeParser struct {
	text string
	err  error
}

func (f *fakeParser) Extract(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", &ExtractionError{Err: f.err}
	}
	return f.text, nil
}

const testDocURL = "https://example.com/docs/policy.pdf"

func documentText() string {
	return strings.TrimSpace(strings.Repeat(
		"The grace period for premium payment is thirty days. "+
			"Waiting periods apply to pre-existing conditions. ", 10))
}

func newTestService(t *testing.T, fetcher DocumentFetcher, parser DocumentParser, chat llm.ChatProvider, vs store.VectorStore) (Service, string) {
	t.Helper()

	embedder := fakeEmbedder{}
	indexer, err := NewIndexer(vs, embedder, &IndexerConfig{
		ChunkSize:        100,
		ChunkOverlap:     20,
		EmbeddingDim:     3,
		EmbedConcurrency: 2,
		SettleDelay:      10 * time.Millisecond,
		SettleTimeout:    time.Second,
	})
	require.NoError(t, err)

	dataDir := t.TempDir()
	svc, err := NewService(
		fetcher,
		parser,
		indexer,
		NewPlanner(nil, false),
		NewRetriever(vs, embedder, 5),
		NewSynthesizer(chat),
		NewNoopCache(),
		vs,
		&Config{
			NamespacePrefix:     "qa_",
			DataDir:             dataDir,
			MaxContextChars:     8000,
			QuestionConcurrency: 4,
		},
	)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	return svc, dataDir
}

func TestService_Run_AnswersInRequestOrder(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, _ := newTestService(t, fetcher, &fakeParser{text: documentText()}, &echoChat{}, store.NewMemoryStore())

	questions := make([]string, 8)
	for i := range questions {
		questions[i] = fmt.Sprintf("question number %d?", i)
	}

	answers, err := svc.Run(context.Background(), testDocURL, questions)
	require.NoError(t, err)
	require.Len(t, answers, len(questions))

	for i, q := range questions {
		assert.Equal(t, "echo: "+q, answers[i])
	}
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestService_Run_EmptyQuestions(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, _ := newTestService(t, fetcher, &fakeParser{text: documentText()}, &echoChat{}, store.NewMemoryStore())

	answers, err := svc.Run(context.Background(), testDocURL, []string{})
	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.NotNil(t, answers)
	assert.Zero(t, fetcher.calls.Load(), "empty batch must not trigger ingestion")
}

func TestService_Run_InvalidURL(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{}, &fakeParser{text: documentText()}, &echoChat{}, store.NewMemoryStore())

	for _, badURL := range []string{"", "   ", "ftp://example.com/x.pdf", "not a url"} {
		_, err := svc.Run(context.Background(), badURL, []string{"q?"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "url: %q", badURL)
	}
}

func TestService_Run_BlankQuestionRejected(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{}, &fakeParser{text: documentText()}, &echoChat{}, store.NewMemoryStore())

	_, err := svc.Run(context.Background(), testDocURL, []string{"fine?", "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestService_Run_FetchErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	svc, _ := newTestService(t, fetcher, &fakeParser{text: documentText()}, &echoChat{}, store.NewMemoryStore())

	_, err := svc.Run(context.Background(), testDocURL, []string{"q?"})
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, testDocURL, ferr.URL)
}

func TestService_Run_ExtractionErrorPropagates(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{}, &fakeParser{err: errors.New("corrupt pdf")}, &echoChat{}, store.NewMemoryStore())

	_, err := svc.Run(context.Background(), testDocURL, []string{"q?"})
	var eerr *ExtractionError
	require.ErrorAs(t, err, &eerr)
}

func TestService_Run_SkipsIngestionWhenIndexed(t *testing.T) {
	vs := store.NewMemoryStore()

	namespace := "qa_" + textutil.HashString(testDocURL)[:16]
	require.NoError(t, vs.Upsert(context.Background(), namespace, []store.Chunk{
		{ID: "pre-0", DocumentID: "pre", Sequence: 0, Content: "prepopulated content", Embedding: []float32{1, 0, 0}},
	}))

	fetcher := &fakeFetcher{}
	svc, _ := newTestService(t, fetcher, &fakeParser{text: documentText()}, &echoChat{}, vs)

	answers, err := svc.Run(context.Background(), testDocURL, []string{"what is covered?"})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Zero(t, fetcher.calls.Load(), "indexed document must not be fetched again")
}

func TestService_Run_CleansUpTempFiles(t *testing.T) {
	svc, dataDir := newTestService(t, &fakeFetcher{}, &fakeParser{text: documentText()}, &echoChat{}, store.NewMemoryStore())

	_, err := svc.Run(context.Background(), testDocURL, []string{"q?"})
	require.NoError(t, err)

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "downloaded document must be removed")
}

func TestService_Run_CleansUpTempFilesOnExtractionFailure(t *testing.T) {
	svc, dataDir := newTestService(t, &fakeFetcher{}, &fakeParser{err: errors.New("corrupt pdf")}, &echoChat{}, store.NewMemoryStore())

	_, err := svc.Run(context.Background(), testDocURL, []string{"q?"})
	require.Error(t, err)

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingChat struct {
	failOn string
}

func (f *failingChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return "", errors.New("not used")
}

func (f *failingChat) Generate(_ context.Context, prompt, _ string) (*llm.GenerateResponse, error) {
	if strings.Contains(prompt, f.failOn) {
		return nil, errors.New("model unavailable")
	}
	return &llm.GenerateResponse{Content: "ok"}, nil
}

func (f *failingChat) Name() string { return "failing" }

func TestService_Run_FirstFailureAbortsBatch(t *testing.T) {
	chat := &failingChat{failOn: "poison question"}
	svc, _ := newTestService(t, &fakeFetcher{}, &fakeParser{text: documentText()}, chat, store.NewMemoryStore())

	_, err := svc.Run(context.Background(), testDocURL, []string{
		"ordinary question one?",
		"poison question?",
		"ordinary question two?",
	})

	var serr *SynthesisError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Question, "poison")
}
