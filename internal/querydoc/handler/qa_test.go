package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/querydoc/internal/querydoc/biz"
	"github.com/kart-io/querydoc/internal/querydoc/handler"
	"github.com/kart-io/querydoc/internal/querydoc/router"
)

type fakeService struct {
	answers   []string
	err       error
	lastURL   string
	lastQs    []string
	runCalled bool
}

func (f *fakeService) Run(_ context.Context, documentsURL string, questions []string) ([]string, error) {
	f.runCalled = true
	f.lastURL = documentsURL
	f.lastQs = questions
	return f.answers, f.err
}

func (f *fakeService) Stats(_ context.Context) map[string]interface{} {
	return map[string]interface{}{"uptime_seconds": 1.0}
}

func (f *fakeService) Close() {}

func newTestRouter(svc biz.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	router.Register(engine, handler.NewQAHandler(svc))
	return engine
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRun_Success(t *testing.T) {
	svc := &fakeService{answers: []string{"thirty days", "Not mentioned in the document."}}
	engine := newTestRouter(svc)

	w := doRequest(engine, http.MethodPost, "/hackrx/run",
		`{"documents":"https://example.com/doc.pdf","questions":["grace period?","dental?"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answers":["thirty days","Not mentioned in the document."]}`, w.Body.String())
	assert.Equal(t, "https://example.com/doc.pdf", svc.lastURL)
	assert.Equal(t, []string{"grace period?", "dental?"}, svc.lastQs)
}

func TestRun_EmptyQuestionList(t *testing.T) {
	svc := &fakeService{answers: []string{}}
	engine := newTestRouter(svc)

	w := doRequest(engine, http.MethodPost, "/hackrx/run",
		`{"documents":"https://example.com/doc.pdf","questions":[]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answers":[]}`, w.Body.String())
	assert.True(t, svc.runCalled)
}

func TestRun_MissingQuestionsField(t *testing.T) {
	svc := &fakeService{}
	engine := newTestRouter(svc)

	w := doRequest(engine, http.MethodPost, "/hackrx/run",
		`{"documents":"https://example.com/doc.pdf"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request format"}`, w.Body.String())
	assert.False(t, svc.runCalled)
}

func TestRun_MissingDocumentsField(t *testing.T) {
	engine := newTestRouter(&fakeService{})

	w := doRequest(engine, http.MethodPost, "/hackrx/run", `{"questions":["q?"]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request format"}`, w.Body.String())
}

func TestRun_MalformedJSON(t *testing.T) {
	engine := newTestRouter(&fakeService{})

	w := doRequest(engine, http.MethodPost, "/hackrx/run", `{"documents": `)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request format"}`, w.Body.String())
}

func TestRun_ValidationErrorMapsTo400(t *testing.T) {
	svc := &fakeService{err: biz.NewValidationError("documents url must be a valid http or https url")}
	engine := newTestRouter(svc)

	w := doRequest(engine, http.MethodPost, "/hackrx/run",
		`{"documents":"ftp://example.com/doc.pdf","questions":["q?"]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request format")
}

func TestRun_PipelineErrorsMapTo500(t *testing.T) {
	stageErrors := []error{
		&biz.FetchError{URL: "https://example.com/doc.pdf", Status: 404},
		&biz.ExtractionError{Err: errors.New("corrupt pdf")},
		&biz.IndexingError{Stage: "embedding", Err: errors.New("backend down")},
		&biz.SynthesisError{Question: "q?", Err: errors.New("model unavailable")},
	}

	for _, stageErr := range stageErrors {
		svc := &fakeService{err: stageErr}
		engine := newTestRouter(svc)

		w := doRequest(engine, http.MethodPost, "/hackrx/run",
			`{"documents":"https://example.com/doc.pdf","questions":["q?"]}`)

		require.Equal(t, http.StatusInternalServerError, w.Code, "error: %v", stageErr)
		assert.Contains(t, w.Body.String(), "Internal server error")
	}
}

func TestPing(t *testing.T) {
	engine := newTestRouter(&fakeService{})

	w := doRequest(engine, http.MethodGet, "/ping", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PONG", w.Body.String())
}

func TestStats(t *testing.T) {
	engine := newTestRouter(&fakeService{})

	w := doRequest(engine, http.MethodGet, "/v1/qa/stats", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uptime_seconds")
}
