package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2, 3},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1, 0},
			b:        []float32{0, 1},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1, 0},
			b:        []float32{-1, 0},
			expected: -1.0,
		},
		{
			name:     "mismatched lengths",
			a:        []float32{1, 2},
			b:        []float32{1, 2, 3},
			expected: 0.0,
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float32{0, 0},
			b:        []float32{1, 2},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestHashString(t *testing.T) {
	// SHA-256 of "hello"
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		HashString("hello"))

	assert.Equal(t, HashString("a"), HashString("a"))
	assert.NotEqual(t, HashString("a"), HashString("b"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hel", TruncateString("hello", 3))
	assert.Equal(t, "你好", TruncateString("你好世界", 2))
	assert.Equal(t, "", TruncateString("hello", 0))
}

func TestSplitIntoChunks_Basic(t *testing.T) {
	assert.Nil(t, SplitIntoChunks("", 100, 10))
	assert.Nil(t, SplitIntoChunks("text", 0, 0))

	// Short text yields a single chunk.
	chunks := SplitIntoChunks("short text", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitIntoChunks_SizeLimit(t *testing.T) {
	text := strings.Repeat("a", 500)
	chunks := SplitIntoChunks(text, 100, 20)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
	}
}

func TestSplitIntoChunks_Coverage(t *testing.T) {
	// Every chunk must be a contiguous substring, the first anchored at the
	// start and the last at the end, with no gaps between consecutive chunks.
	text := "The quick brown fox jumps over the lazy dog. " +
		strings.Repeat("Pack my box with five dozen liquor jugs. ", 20)
	chunks := SplitIntoChunks(text, 80, 20)
	require.Greater(t, len(chunks), 1)

	assert.True(t, strings.HasPrefix(text, chunks[0]))
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))

	runes := []rune(text)
	pos := 0
	for i, chunk := range chunks {
		chunkRunes := []rune(chunk)
		idx := indexOfRunes(runes, chunkRunes, maxInt(0, pos-len(chunkRunes)))
		require.GreaterOrEqual(t, idx, 0, "chunk %d not found in source", i)
		// No gap: each chunk must begin at or before the previous coverage end.
		assert.LessOrEqual(t, idx, pos, "gap before chunk %d", i)
		pos = idx + len(chunkRunes)
	}
	assert.Equal(t, len(runes), pos)
}

func TestSplitIntoChunks_PreferSentenceBoundary(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Alpha beta gamma delta. ", 10))
	chunks := SplitIntoChunks(text, 50, 0)
	require.Greater(t, len(chunks), 1)

	// Non-final chunks should end at a natural boundary, not mid-word.
	for _, chunk := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(chunk, " \t\n")
		last := trimmed[len(trimmed)-1]
		assert.Contains(t, ".!?", string(last), "chunk should end at a sentence: %q", chunk)
	}
}

func TestSplitIntoChunks_OverlapClamped(t *testing.T) {
	text := strings.Repeat("x", 300)
	// Overlap >= chunk size must not loop forever.
	chunks := SplitIntoChunks(text, 10, 10)
	require.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len(chunks), 300)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\t\tb\n\nc  "))
	assert.Equal(t, "", NormalizeWhitespace("   "))
}

func indexOfRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
