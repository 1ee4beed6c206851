package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/querydoc/pkg/llm"
)

const rewriteSystemPrompt = "You rewrite user questions into standalone " +
	"search queries for a document retrieval system. Reply with the " +
	"rewritten query only, no explanation."

// Planner resolves the retrieval query for a question. When rewriting is
// enabled it asks an LLM to rephrase the question into a search query;
// otherwise, and on any rewrite failure, the original question is used.
type Planner struct {
	chat    llm.ChatProvider
	enabled bool
}

// NewPlanner creates a planner. chat may be nil when rewriting is disabled.
func NewPlanner(chat llm.ChatProvider, enabled bool) *Planner {
	return &Planner{chat: chat, enabled: enabled}
}

// Plan returns the query to retrieve with. Never returns an empty string.
func (p *Planner) Plan(ctx context.Context, question string) string {
	if !p.enabled || p.chat == nil {
		return question
	}

	prompt := fmt.Sprintf("Question: %s", question)
	resp, err := p.chat.Generate(ctx, prompt, rewriteSystemPrompt)
	if err != nil {
		logger.Warnw("Query rewrite failed, using original question",
			"error", err.Error(),
		)
		return question
	}

	rewritten := strings.TrimSpace(thinkBlockRegex.ReplaceAllString(resp.Content, ""))
	if rewritten == "" {
		return question
	}
	return rewritten
}
