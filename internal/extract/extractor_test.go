package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractBytes_PlainText(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("This  Agreement\tis made\n\nbetween the parties."), ".txt")
	if err != nil {
		t.Fatal(err)
	}
	want := "This Agreement is made between the parties."
	if got.FullText != want {
		t.Errorf("expected %q, got %q", want, got.FullText)
	}
	if got.PageCount != 1 {
		t.Errorf("expected 1 page, got %d", got.PageCount)
	}
	if len(got.Pages) != 1 {
		t.Fatalf("expected 1 page span, got %d", len(got.Pages))
	}
	span := got.Pages[0]
	if span.PageNumber != 1 || span.CharStart != 0 || span.CharEnd != len(got.FullText) {
		t.Errorf("unexpected page span: %+v", span)
	}
}

func TestExtractBytes_UnsupportedFormat(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("x"), ".xlsx"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExtractBytes_InvalidUTF8(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte{0xff, 0xfe, 0x00}, ".txt"); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestExtractBytes_InvalidPDF(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a pdf"), ".pdf"); err == nil {
		t.Error("expected error for malformed PDF")
	}
}

func TestExtract_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.txt")
	if err := os.WriteFile(path, []byte("term of 2 years"), 0600); err != nil {
		t.Fatal(err)
	}
	e := NewExtractor()
	got, err := e.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.FullText != "term of 2 years" {
		t.Errorf("unexpected text: %q", got.FullText)
	}
}

func TestAssemblePages_Offsets(t *testing.T) {
	pages := []string{"first page", "second page", "third"}
	got := assemblePages(pages)

	if got.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", got.PageCount)
	}
	// Pages are joined with a single newline; each span must slice back to
	// its own page text.
	for i, span := range got.Pages {
		if span.PageNumber != i+1 {
			t.Errorf("page %d: number %d", i, span.PageNumber)
		}
		if span.CharEnd > len(got.FullText) {
			t.Fatalf("page %d: char_end %d exceeds text length %d", i, span.CharEnd, len(got.FullText))
		}
		if got.FullText[span.CharStart:span.CharEnd] != pages[i] {
			t.Errorf("page %d: span %q != %q", i, got.FullText[span.CharStart:span.CharEnd], pages[i])
		}
	}
	// Spans are contiguous with exactly one separator character between them.
	for i := 1; i < len(got.Pages); i++ {
		if got.Pages[i].CharStart != got.Pages[i-1].CharEnd+1 {
			t.Errorf("span %d not contiguous: start %d after end %d", i, got.Pages[i].CharStart, got.Pages[i-1].CharEnd)
		}
	}
}

func TestAssemblePages_Empty(t *testing.T) {
	got := assemblePages(nil)
	if got.FullText != "" || got.PageCount != 0 || len(got.Pages) != 0 {
		t.Errorf("unexpected result for no pages: %+v", got)
	}
}

func TestCleanText(t *testing.T) {
	if got := cleanText("  a \x00 b\n\nc  "); got != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", got)
	}
}
