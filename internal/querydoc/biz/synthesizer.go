package biz

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kart-io/querydoc/internal/querydoc/metrics"
	"github.com/kart-io/querydoc/pkg/llm"
)

// NotMentionedAnswer is returned when the document does not cover the
// question.
const NotMentionedAnswer = "Not mentioned in the document."

// noAnswerPlaceholder stands in for an empty model completion.
const noAnswerPlaceholder = "No answer generated."

const answerSystemPrompt = "You answer questions about a document using " +
	"only the provided context. Be concise and factual. If the context " +
	"does not contain the answer, reply exactly: " + NotMentionedAnswer

const answerPromptTemplate = `Context:
%s

Question: %s

Answer:`

// thinkBlockRegex matches reasoning blocks emitted by some local models.
var thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Synthesizer generates answers from assembled context.
type Synthesizer struct {
	chat llm.ChatProvider
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(chat llm.ChatProvider) *Synthesizer {
	return &Synthesizer{chat: chat}
}

// Synthesize answers a question from context text. An empty context short
// circuits to the not-mentioned answer without calling the model. The
// grounded flag reports whether the answer came from document content.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextText string) (string, bool, error) {
	if strings.TrimSpace(contextText) == "" {
		return NotMentionedAnswer, false, nil
	}

	prompt := fmt.Sprintf(answerPromptTemplate, contextText, question)

	qaMetrics := metrics.GetQAMetrics()
	start := time.Now()
	resp, err := s.chat.Generate(ctx, prompt, answerSystemPrompt)
	if err != nil {
		qaMetrics.RecordLLMCall(time.Since(start), 0, 0, err)
		return "", false, err
	}

	promptTokens, completionTokens := 0, 0
	if resp.TokenUsage != nil {
		promptTokens = resp.TokenUsage.PromptTokens
		completionTokens = resp.TokenUsage.CompletionTokens
	}
	qaMetrics.RecordLLMCall(time.Since(start), promptTokens, completionTokens, nil)

	answer := strings.TrimSpace(thinkBlockRegex.ReplaceAllString(resp.Content, ""))
	if answer == "" {
		answer = noAnswerPlaceholder
	}

	// Grounded tracks one thing only: the answer is not the sentinel.
	return answer, !IsNotMentioned(answer), nil
}

// IsNotMentioned reports whether an answer is the not-mentioned sentinel,
// ignoring case and trailing punctuation.
func IsNotMentioned(answer string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(answer), ".!?")
	sentinel := strings.TrimRight(NotMentionedAnswer, ".")
	return strings.EqualFold(trimmed, sentinel)
}
