package pdfutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePageText(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "single show operator",
			content:  "BT /F1 12 Tf 72 720 Td (Hello world) Tj ET",
			expected: "Hello world",
		},
		{
			name:     "kerned array joins without gaps",
			content:  "BT [(Gra) -18 (ce) 3 ( period)] TJ ET",
			expected: "Grace period",
		},
		{
			name:     "positioning operators break lines",
			content:  "BT (first line) Tj 0 -14 Td (second line) Tj T* (third) Tj ET",
			expected: "first line\nsecond line\nthird",
		},
		{
			name:     "quote operator starts a new line",
			content:  "BT (one) Tj (two) ' ET",
			expected: "one\ntwo",
		},
		{
			name:     "escapes and nested parentheses",
			content:  `BT (30 \(thirty\) days \\ \101) Tj ET`,
			expected: `30 (thirty) days \ A`,
		},
		{
			name:     "octal escape",
			content:  "BT (\\110i) Tj ET",
			expected: "Hi",
		},
		{
			name:     "hex strings and comments ignored",
			content:  "% comment (not text)\nBT <48656C6C6F> Tj (kept) Tj ET",
			expected: "kept",
		},
		{
			name:     "trailing string flushed at stream end",
			content:  "BT 1 0 0 1 72 720 cm (orphan)",
			expected: "orphan",
		},
		{
			name:     "no text operators",
			content:  "q 1 0 0 1 0 0 cm /Im0 Do Q",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodePageText(tt.content))
		})
	}
}

func TestParseLiteralString(t *testing.T) {
	value, next := parseLiteralString("(abc) Tj", 0)
	assert.Equal(t, "abc", value)
	assert.Equal(t, 5, next)

	value, _ = parseLiteralString("(a(b)c)", 0)
	assert.Equal(t, "a(b)c", value)

	value, _ = parseLiteralString("(line\\nbreak)", 0)
	assert.Equal(t, "line\nbreak", value)
}
