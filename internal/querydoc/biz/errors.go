package biz

import "fmt"

// ValidationError reports an invalid request. It maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// FetchError reports a failure to download the source document.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("failed to fetch document %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("failed to fetch document %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failure to extract text from the document.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract document text: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IndexingError reports a failure while embedding or storing chunks.
type IndexingError struct {
	Stage string
	Err   error
}

func (e *IndexingError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("indexing failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("indexing failed: %v", e.Err)
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}

// SynthesisError reports a failure while answering a question.
type SynthesisError struct {
	Question string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("failed to answer question %q: %v", e.Question, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
