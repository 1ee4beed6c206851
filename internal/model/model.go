// Package model defines shared data structures for the QA service.
package model

import "time"

// RunRequest is the document QA request payload.
type RunRequest struct {
	// Documents is the URL of the document to answer questions about.
	Documents string `json:"documents" binding:"required"`

	// Questions is the ordered question list. A pointer distinguishes a
	// missing field (rejected) from a present empty list (answered with an
	// empty result).
	Questions *[]string `json:"questions"`
}

// RunResponse is the document QA response payload. Answers are positionally
// aligned with the request questions.
type RunResponse struct {
	Answers []string `json:"answers"`
}

// AnswerRecord captures the outcome of answering one question.
type AnswerRecord struct {
	Question string
	Answer   string
	Grounded bool
	Elapsed  time.Duration
}

// BatchMetrics summarizes one answered batch.
type BatchMetrics struct {
	Questions    int
	Grounded     int
	TotalLatency time.Duration
}

// GroundedRate returns the fraction of grounded answers in the batch.
func (m BatchMetrics) GroundedRate() float64 {
	if m.Questions == 0 {
		return 0
	}
	return float64(m.Grounded) / float64(m.Questions)
}

// Accuracy returns the grounded answer percentage (0-100).
func (m BatchMetrics) Accuracy() float64 {
	return m.GroundedRate() * 100
}

// AvgLatency returns the average per-question latency.
func (m BatchMetrics) AvgLatency() time.Duration {
	if m.Questions == 0 {
		return 0
	}
	return m.TotalLatency / time.Duration(m.Questions)
}
