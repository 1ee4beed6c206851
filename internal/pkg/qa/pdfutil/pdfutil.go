// Package pdfutil extracts text from PDF files using pdfcpu.
package pdfutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read pdf context: %w", err)
	}
	return pdfCtx.PageCount, nil
}

// ExtractPages extracts the text of each page in order. Pages without
// extractable content yield empty strings so indices stay aligned with
// page numbers.
//
// pdfcpu emits decoded content streams, so each page is run through a
// text-operator decode that keeps only the shown strings. Glyph mapping
// through embedded font encodings is not attempted; pages whose text is
// drawn via hex-encoded CIDs come back mostly empty.
func ExtractPages(path string) ([]string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf context: %w", err)
	}
	pageCount := pdfCtx.PageCount
	if pageCount == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	outDir, err := os.MkdirTemp("", "querydoc-pages-")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract pdf content: %w", err)
	}

	// pdfcpu writes one content file per page, named Content_page_<n>.
	pageTexts := make(map[int]string)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(entry.Name(), "Content_page_%d", &pageNum); err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		text := decodePageText(string(content))
		if text == "" {
			// No text-showing operators found; keep the raw stream rather
			// than dropping the page.
			text = string(content)
		}
		pageTexts[pageNum] = text
	}

	pages := make([]string, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, pageTexts[pageNum])
	}

	return pages, nil
}

// decodePageText converts a decoded PDF content stream into plain text.
// Literal string arguments of the text-showing operators (Tj, TJ, ', ")
// are collected; the positioning operators Td, TD and T* break lines.
// Everything else, including hex strings, is ignored.
func decodePageText(content string) string {
	var (
		lines   []string
		current strings.Builder
		pending strings.Builder
	)

	endLine := func() {
		if current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
	}
	show := func() {
		if pending.Len() > 0 {
			current.WriteString(pending.String())
			pending.Reset()
		}
	}

	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == '(':
			lit, next := parseLiteralString(content, i)
			pending.WriteString(lit)
			i = next
		case c == '%':
			for i < len(content) && content[i] != '\n' {
				i++
			}
		case c == '\'' || c == '"':
			endLine()
			show()
			i++
		case c == '<':
			for i < len(content) && content[i] != '>' {
				i++
			}
			i++
		case isOperatorByte(c):
			start := i
			for i < len(content) && isOperatorByte(content[i]) {
				i++
			}
			switch content[start:i] {
			case "Tj", "TJ":
				show()
			case "Td", "TD", "T*":
				endLine()
			case "ET":
				show()
				endLine()
			}
		default:
			i++
		}
	}
	show()
	endLine()

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isOperatorByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '*'
}

// parseLiteralString reads a PDF literal string starting at the opening
// parenthesis and returns its unescaped value and the index just past the
// closing parenthesis. Parentheses nest; backslash escapes follow the PDF
// string rules, including up to three octal digits.
func parseLiteralString(s string, start int) (string, int) {
	var b strings.Builder
	depth := 0

	i := start
	for i < len(s) {
		c := s[i]
		switch c {
		case '\\':
			if i+1 >= len(s) {
				i++
				continue
			}
			i++
			switch e := s[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
				// Backspace and form feed carry no text.
			case '(', ')', '\\':
				b.WriteByte(e)
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(s[i]-'0')
					}
					b.WriteByte(byte(val))
				}
			}
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		i++
	}

	return b.String(), i
}

// ExtractText extracts the full document text with pages joined by blank
// lines, in page order.
func ExtractText(path string) (string, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(page)
	}

	return builder.String(), nil
}
