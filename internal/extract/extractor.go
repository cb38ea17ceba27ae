// Package extract provides contract text extraction with page-offset tracking.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/hyperjump/keiyaku/internal/models"
)

// Extracted is the result of text extraction: the full document text and an
// ordered, contiguous page-offset map into it. Downstream components treat
// the map as authoritative and never re-derive offsets.
type Extracted struct {
	FullText  string
	PageCount int
	Pages     []models.PageSpan
}

// Extractor extracts plain text from contract files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text with page offsets.
func (e *Extractor) Extract(path string) (*Extracted, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). PDF extraction produces
// one page span per PDF page; other formats have no page structure and get
// a single span covering the whole text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (*Extracted, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx", ".odt", ".rtf":
		return extractDOCX(content)
	case ".txt", ".md", "":
		return extractPlain(content)
	default:
		return nil, fmt.Errorf("unsupported contract format: %q", ext)
	}
}

// cleanText collapses runs of whitespace to single spaces and strips NUL
// bytes, which some PDF extractors leak into page text.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := true
	for _, r := range text {
		if r == 0 {
			continue
		}
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// assemblePages joins per-page texts with a newline separator and records
// the absolute character range of each page in the joined text.
func assemblePages(pageTexts []string) *Extracted {
	var full strings.Builder
	pages := make([]models.PageSpan, 0, len(pageTexts))
	position := 0
	for i, text := range pageTexts {
		start := position
		end := start + len(text)
		pages = append(pages, models.PageSpan{
			PageNumber: i + 1,
			CharStart:  start,
			CharEnd:    end,
		})
		full.WriteString(text)
		if i < len(pageTexts)-1 {
			full.WriteByte('\n')
		}
		position = end + 1
	}
	return &Extracted{
		FullText:  full.String(),
		PageCount: len(pageTexts),
		Pages:     pages,
	}
}

// singlePage wraps text without page structure as a one-page document.
func singlePage(text string) *Extracted {
	return &Extracted{
		FullText:  text,
		PageCount: 1,
		Pages: []models.PageSpan{
			{PageNumber: 1, CharStart: 0, CharEnd: len(text)},
		},
	}
}
