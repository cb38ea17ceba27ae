// Package ingest provides contract chunking and ingestion into storage and
// the vector index.
package ingest

import (
	"fmt"
	"unicode/utf8"

	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/pkg/utils"
)

// Chunker splits document text into overlapping, offset-tracked chunks.
// Sizes are in characters. Boundaries prefer sentence breaks: before
// cutting at the hard maximum, the chunker scans backward up to the overlap
// distance for a sentence terminator followed by whitespace.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Scan returns a restartable cursor over the chunks of text. Each call
// produces an independent sequence; no state is shared between scanners.
func (c *Chunker) Scan(docID, text string, pages []models.PageSpan) *ChunkScanner {
	return &ChunkScanner{
		chunker: c,
		docID:   docID,
		text:    text,
		pages:   pages,
	}
}

// Chunk collects the full chunk sequence for text.
func (c *Chunker) Chunk(docID, text string, pages []models.PageSpan) []*models.Chunk {
	var chunks []*models.Chunk
	s := c.Scan(docID, text, pages)
	for {
		chunk, ok := s.Next()
		if !ok {
			break
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// ChunkScanner walks a document's text emitting one chunk at a time. The
// only state carried between chunks is the moving cursor.
type ChunkScanner struct {
	chunker *Chunker
	docID   string
	text    string
	pages   []models.PageSpan
	cursor  int
	index   int
	done    bool
}

// Next returns the next chunk, or false when the sequence is exhausted.
// Chunk text is the verbatim substring of the original: concatenating each
// chunk's non-overlapping region reconstructs the document exactly.
func (s *ChunkScanner) Next() (*models.Chunk, bool) {
	if s.done || s.cursor >= len(s.text) {
		s.done = true
		return nil, false
	}
	start := s.cursor
	end := start + s.chunker.chunkSize
	if end >= len(s.text) {
		end = len(s.text)
	} else if cut := s.sentenceCut(start, end); cut > start {
		end = cut
	} else {
		// A hard cut must not split a multi-byte rune.
		end = utils.PrevRuneStart(s.text, end)
		if end <= start {
			_, n := utf8.DecodeRuneInString(s.text[start:])
			end = start + n
		}
	}
	chunk := &models.Chunk{
		ID:         fmt.Sprintf("%s_%d", s.docID, s.index),
		DocumentID: s.docID,
		ChunkIndex: s.index,
		Text:       s.text[start:end],
		CharStart:  start,
		CharEnd:    end,
		PageNumber: pageFor(start, s.pages),
	}
	s.index++
	if end >= len(s.text) {
		s.done = true
	} else {
		next := utils.PrevRuneStart(s.text, end-s.chunker.chunkOverlap)
		if next <= start {
			_, n := utf8.DecodeRuneInString(s.text[start:])
			next = start + n
		}
		s.cursor = next
	}
	return chunk, true
}

// sentenceCut scans backward from end (exclusive) up to the overlap
// distance for a sentence terminator followed by whitespace, returning the
// offset just past the terminator, or -1 when no break is found.
func (s *ChunkScanner) sentenceCut(start, end int) int {
	limit := end - s.chunker.chunkOverlap
	if limit < start+1 {
		limit = start + 1
	}
	for i := end - 1; i >= limit; i-- {
		if !isSentenceTerminator(s.text[i]) {
			continue
		}
		if i+1 < len(s.text) && isWhitespace(s.text[i+1]) {
			return i + 1
		}
	}
	return -1
}

func isSentenceTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// pageFor returns the page whose span contains pos. Positions past the last
// span clamp to the last page; an empty or inconsistent map falls back to
// page 1 rather than failing the ingestion.
func pageFor(pos int, pages []models.PageSpan) int {
	for _, p := range pages {
		if p.CharStart <= pos && pos <= p.CharEnd {
			return p.PageNumber
		}
	}
	if len(pages) > 0 && pos > pages[len(pages)-1].CharEnd {
		return pages[len(pages)-1].PageNumber
	}
	return 1
}
