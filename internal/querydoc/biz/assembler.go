package biz

import (
	"strings"
	"unicode/utf8"

	"github.com/kart-io/querydoc/internal/querydoc/store"
)

// contextSeparator joins retrieved chunks in the synthesis prompt.
const contextSeparator = "\n\n---\n\n"

// AssembleContext builds the synthesis context from search results in rank
// order under a character budget. A chunk that would exceed the remaining
// budget ends assembly; later, smaller chunks are not pulled forward, so
// rank order is preserved.
func AssembleContext(results []store.SearchResult, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	var parts []string
	used := 0

	for _, r := range results {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}

		cost := utf8.RuneCountInString(content)
		if len(parts) > 0 {
			cost += utf8.RuneCountInString(contextSeparator)
		}
		if used+cost > maxChars {
			break
		}

		parts = append(parts, content)
		used += cost
	}

	return strings.Join(parts, contextSeparator)
}
