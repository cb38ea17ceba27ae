package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/keiyaku/internal/models"
)

func TestChunkerShortText(t *testing.T) {
	c := NewChunker(1000, 200)
	text := "Short agreement between two parties."
	chunks := c.Chunk("doc:a", text, nil)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want original text", chunks[0].Text)
	}
	if chunks[0].CharStart != 0 || chunks[0].CharEnd != len(text) {
		t.Errorf("offsets = [%d, %d), want [0, %d)", chunks[0].CharStart, chunks[0].CharEnd, len(text))
	}
	if chunks[0].ID != "doc:a_0" {
		t.Errorf("chunk ID = %q, want doc:a_0", chunks[0].ID)
	}
}

func TestChunkerEmptyText(t *testing.T) {
	c := NewChunker(1000, 200)
	if chunks := c.Chunk("doc:a", "", nil); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunkerOffsetsAreVerbatim(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("The supplier shall deliver goods on time. ", 30)
	chunks := c.Chunk("doc:a", text, nil)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if got := text[ch.CharStart:ch.CharEnd]; got != ch.Text {
			t.Errorf("chunk %d: text does not match substring at [%d, %d)",
				ch.ChunkIndex, ch.CharStart, ch.CharEnd)
		}
	}
}

func TestChunkerReconstruction(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("Each party agrees to indemnify the other. ", 25)
	chunks := c.Chunk("doc:a", text, nil)

	// Concatenating each chunk's non-overlapping region rebuilds the
	// original text exactly.
	var b strings.Builder
	prev := 0
	for _, ch := range chunks {
		if ch.CharStart > prev {
			t.Fatalf("chunk %d starts at %d, past previous end %d (gap)", ch.ChunkIndex, ch.CharStart, prev)
		}
		b.WriteString(text[prev:ch.CharEnd])
		prev = ch.CharEnd
	}
	if b.String() != text {
		t.Error("reconstructed text differs from original")
	}
	if prev != len(text) {
		t.Errorf("final chunk ends at %d, want %d", prev, len(text))
	}
}

func TestChunkerOverlap(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("x", 500)
	chunks := c.Chunk("doc:a", text, nil)

	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].CharEnd - chunks[i].CharStart
		if overlap != 20 {
			t.Errorf("overlap between chunks %d and %d = %d, want 20", i-1, i, overlap)
		}
	}
}

func TestChunkerSentenceBoundary(t *testing.T) {
	c := NewChunker(100, 30)
	// A sentence terminator sits inside the backward-scan window; the
	// chunk should end just past it instead of at the hard maximum.
	text := strings.Repeat("a", 80) + ". " + strings.Repeat("b", 200)
	chunks := c.Chunk("doc:a", text, nil)

	if chunks[0].CharEnd != 81 {
		t.Errorf("first chunk ends at %d, want 81 (just past the period)", chunks[0].CharEnd)
	}
	if !strings.HasSuffix(chunks[0].Text, ".") {
		t.Errorf("first chunk should end with the sentence terminator, got %q", chunks[0].Text[len(chunks[0].Text)-5:])
	}
}

func TestChunkerNoSentenceBreakInWindow(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("y", 300)
	chunks := c.Chunk("doc:a", text, nil)

	if chunks[0].CharEnd != 100 {
		t.Errorf("first chunk ends at %d, want hard cut at 100", chunks[0].CharEnd)
	}
}

func TestChunkerProgressWithZeroOverlapWindow(t *testing.T) {
	// Pathological configuration must still terminate.
	c := NewChunker(1, 5)
	text := "abcdef"
	chunks := c.Chunk("doc:a", text, nil)

	if len(chunks) == 0 || len(chunks) > len(text) {
		t.Fatalf("unexpected chunk count %d", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if last.CharEnd != len(text) {
		t.Errorf("final chunk ends at %d, want %d", last.CharEnd, len(text))
	}
}

func TestChunkerPageAssignment(t *testing.T) {
	pages := []models.PageSpan{
		{PageNumber: 1, CharStart: 0, CharEnd: 49},
		{PageNumber: 2, CharStart: 50, CharEnd: 119},
	}
	c := NewChunker(60, 10)
	text := strings.Repeat("z", 120)
	chunks := c.Chunk("doc:a", text, pages)

	if chunks[0].PageNumber != 1 {
		t.Errorf("chunk 0 page = %d, want 1", chunks[0].PageNumber)
	}
	for _, ch := range chunks[1:] {
		if ch.CharStart >= 50 && ch.PageNumber != 2 {
			t.Errorf("chunk %d starting at %d assigned page %d, want 2", ch.ChunkIndex, ch.CharStart, ch.PageNumber)
		}
	}
}

func TestPageForClamping(t *testing.T) {
	pages := []models.PageSpan{
		{PageNumber: 1, CharStart: 0, CharEnd: 10},
		{PageNumber: 2, CharStart: 11, CharEnd: 20},
	}
	if got := pageFor(25, pages); got != 2 {
		t.Errorf("position past last span = page %d, want clamp to 2", got)
	}
	if got := pageFor(5, nil); got != 1 {
		t.Errorf("empty page map = page %d, want fallback 1", got)
	}
}

func TestChunkScannerRestartable(t *testing.T) {
	c := NewChunker(50, 10)
	text := strings.Repeat("The term of this agreement is one year. ", 10)

	first := c.Chunk("doc:a", text, nil)
	second := c.Chunk("doc:a", text, nil)

	if len(first) != len(second) {
		t.Fatalf("scan lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text || first[i].CharStart != second[i].CharStart {
			t.Errorf("chunk %d differs between scans", i)
		}
	}
}

func TestChunkerNeverSplitsRunes(t *testing.T) {
	c := NewChunker(5, 2)
	text := strings.Repeat("§", 10)
	chunks := c.Chunk("doc:a", text, nil)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for _, ch := range chunks {
		if !utf8.ValidString(ch.Text) {
			t.Errorf("chunk %d text %q is not valid UTF-8", ch.ChunkIndex, ch.Text)
		}
		if ch.Text != text[ch.CharStart:ch.CharEnd] {
			t.Errorf("chunk %d text does not match its offsets", ch.ChunkIndex)
		}
	}
	if last := chunks[len(chunks)-1]; last.CharEnd != len(text) {
		t.Errorf("last chunk ends at %d, want %d", last.CharEnd, len(text))
	}
}

func TestChunkerSizeSmallerThanRune(t *testing.T) {
	// A chunk size below the rune width still advances one full rune at a
	// time instead of looping or emitting partial bytes.
	c := NewChunker(1, 0)
	text := "§§"
	chunks := c.Chunk("doc:a", text, nil)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for _, ch := range chunks {
		if ch.Text != "§" {
			t.Errorf("chunk %d text = %q, want single rune", ch.ChunkIndex, ch.Text)
		}
	}
}
