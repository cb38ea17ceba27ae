package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/extract"
	"github.com/hyperjump/keiyaku/internal/llm"
	"github.com/hyperjump/keiyaku/internal/metrics"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/internal/vector"
)

func newTestIngestor(t *testing.T) (*Ingestor, storage.Storage, *vector.MemoryIndex, *llm.MockClient) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	index, err := vector.NewMemoryIndex(4)
	if err != nil {
		t.Fatal(err)
	}
	mock := llm.NewMockClient(4)
	cfg := &config.ChunkingConfig{ChunkSize: 80, ChunkOverlap: 16}
	ing := NewIngestor(store, mock, index, cfg, extract.NewExtractor(), &metrics.Counters{})
	return ing, store, index, mock
}

const agreementText = "This Agreement is entered into as of May 1, 2024 between the parties. " +
	"Either party may terminate upon 30 days written notice to the other party."

func TestIngest(t *testing.T) {
	ing, store, index, _ := newTestIngestor(t)
	ctx := context.Background()

	doc, err := ing.Ingest(ctx, "/drop/agreement.txt", []byte(agreementText))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Filename != "agreement.txt" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if !strings.HasPrefix(doc.ID, "doc:") {
		t.Errorf("id = %q", doc.ID)
	}
	if doc.FileSize != int64(len(agreementText)) {
		t.Errorf("file size = %d", doc.FileSize)
	}

	chunks, err := store.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks stored")
	}
	if index.Size() != len(chunks) {
		t.Errorf("index size = %d, chunks = %d", index.Size(), len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.Embedding) != 4 {
			t.Errorf("chunk %s embedding length = %d", ch.ID, len(ch.Embedding))
		}
	}
}

func TestIngestSameContentReplaces(t *testing.T) {
	ing, store, index, _ := newTestIngestor(t)
	ctx := context.Background()

	first, err := ing.Ingest(ctx, "a.txt", []byte(agreementText))
	if err != nil {
		t.Fatal(err)
	}
	sizeAfterFirst := index.Size()

	second, err := ing.Ingest(ctx, "renamed.txt", []byte(agreementText))
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("same bytes got different IDs: %s vs %s", second.ID, first.ID)
	}
	count, err := store.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("documents = %d, want 1", count)
	}
	if index.Size() != sizeAfterFirst {
		t.Errorf("index size = %d, want %d after replacement", index.Size(), sizeAfterFirst)
	}
	// The new filename wins.
	stored, err := store.GetDocument(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Filename != "renamed.txt" {
		t.Errorf("filename = %q", stored.Filename)
	}
}

func TestIngestDegradedWhenEmbeddingUnavailable(t *testing.T) {
	ing, store, index, mock := newTestIngestor(t)
	ctx := context.Background()
	mock.Unavailable = true

	doc, err := ing.Ingest(ctx, "agreement.txt", []byte(agreementText))
	if err != nil {
		t.Fatalf("degraded ingest must succeed: %v", err)
	}
	chunks, err := store.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, ch := range chunks {
		for _, v := range ch.Embedding {
			if v != 0 {
				t.Fatalf("chunk %s: expected zero placeholder vector, got %v", ch.ID, ch.Embedding)
			}
		}
	}
	if index.Size() != len(chunks) {
		t.Errorf("index size = %d, chunks = %d", index.Size(), len(chunks))
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	ing, _, _, _ := newTestIngestor(t)
	if _, err := ing.Ingest(context.Background(), "image.png", []byte{0x89, 0x50}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDelete(t *testing.T) {
	ing, store, index, _ := newTestIngestor(t)
	ctx := context.Background()

	doc, err := ing.Ingest(ctx, "agreement.txt", []byte(agreementText))
	if err != nil {
		t.Fatal(err)
	}
	if err := ing.Delete(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetDocument(ctx, doc.ID); err == nil {
		t.Error("document still present after delete")
	}
	if index.Size() != 0 {
		t.Errorf("index size = %d after delete", index.Size())
	}
}

func TestRebuildVectorIndex(t *testing.T) {
	ing, store, _, mock := newTestIngestor(t)
	ctx := context.Background()

	doc, err := ing.Ingest(ctx, "agreement.txt", []byte(agreementText))
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := store.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a restart with no index snapshot: fresh index, same storage.
	fresh, err := vector.NewMemoryIndex(4)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.ChunkingConfig{ChunkSize: 80, ChunkOverlap: 16}
	restarted := NewIngestor(store, mock, fresh, cfg, extract.NewExtractor(), &metrics.Counters{})

	n, err := restarted.RebuildVectorIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(chunks) {
		t.Errorf("rebuilt %d vectors, want %d", n, len(chunks))
	}
	if fresh.Size() != len(chunks) {
		t.Errorf("index size = %d, want %d", fresh.Size(), len(chunks))
	}
}
