package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/docid"
	"github.com/hyperjump/keiyaku/internal/extract"
	"github.com/hyperjump/keiyaku/internal/llm"
	"github.com/hyperjump/keiyaku/internal/metrics"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/internal/vector"
)

// Ingestor turns raw contract files into stored documents, chunks, and
// vector index entries.
type Ingestor struct {
	storage     storage.Storage
	client      llm.Client
	vectorIndex vector.Index
	chunker     *Chunker
	extractor   *extract.Extractor
	counters    *metrics.Counters
	logger      *zap.Logger // optional; when set, logs debug events
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithLogger sets a logger for debug output (file ingested, document deleted, etc.).
func WithLogger(l *zap.Logger) IngestorOption {
	return func(ing *Ingestor) { ing.logger = l }
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(
	store storage.Storage,
	client llm.Client,
	vectorIndex vector.Index,
	cfg *config.ChunkingConfig,
	extractor *extract.Extractor,
	counters *metrics.Counters,
	opts ...IngestorOption,
) *Ingestor {
	ing := &Ingestor{
		storage:     store,
		client:      client,
		vectorIndex: vectorIndex,
		chunker:     NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		extractor:   extractor,
		counters:    counters,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest extracts, chunks, embeds, and stores one contract. The document
// and all its chunks are written in a single transaction; re-ingesting the
// same bytes replaces the prior document (same content-derived ID).
// Embedding failures do not abort ingestion: affected chunks get the
// zero-vector placeholder and stay retrievable by lookup.
func (ing *Ingestor) Ingest(ctx context.Context, filename string, content []byte) (*models.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extracted, err := ing.extractor.ExtractBytes(content, ext)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	id := docid.ForContent(content)
	doc := &models.Document{
		ID:          id,
		Filename:    filepath.Base(filename),
		FileSize:    int64(len(content)),
		PageCount:   extracted.PageCount,
		ContentHash: docid.ContentHash(content),
		FullText:    extracted.FullText,
		Pages:       extracted.Pages,
	}

	chunks := ing.chunker.Chunk(id, extracted.FullText, extracted.Pages)
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	embeddings, err := ing.client.EmbedBatch(ctx, texts)
	if err != nil {
		if !errors.Is(err, llm.ErrUnavailable) {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		// Degraded ingest: zero vectors keep the chunks out of similarity
		// rankings but retrievable by direct lookup.
		if ing.logger != nil {
			ing.logger.Warn("embedding capability unavailable, storing placeholder vectors",
				zap.String("document_id", id), zap.Error(err))
		}
		embeddings = make([][]float32, len(chunks))
		for i := range embeddings {
			embeddings[i] = make([]float32, ing.client.Dimensions())
		}
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	// Replace any prior version of the same content ID. A failed replace is
	// not fatal, CreateDocumentWithChunks decides whether the ID collides.
	if err := ing.Delete(ctx, id); err != nil && ing.logger != nil {
		ing.logger.Warn("replacing prior document version failed",
			zap.String("document_id", id), zap.Error(err))
	}

	if err := ing.storage.CreateDocumentWithChunks(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	entries := make([]vector.Entry, len(chunks))
	for i, ch := range chunks {
		entries[i] = vector.Entry{
			ChunkID:    ch.ID,
			DocumentID: ch.DocumentID,
			ChunkIndex: ch.ChunkIndex,
			Vector:     ch.Embedding,
		}
	}
	if err := ing.vectorIndex.Add(ctx, entries); err != nil {
		return nil, fmt.Errorf("index vectors: %w", err)
	}

	if ing.counters != nil {
		ing.counters.DocumentsIngested.Add(1)
	}
	if ing.logger != nil {
		ing.logger.Debug("document ingested",
			zap.String("document_id", id),
			zap.String("filename", doc.Filename),
			zap.Int("pages", doc.PageCount),
			zap.Int("chunks", len(chunks)))
	}
	return doc, nil
}

// IngestFile reads and ingests a contract from disk. Used by the drop-folder
// watcher.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (*models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ing.Ingest(ctx, path, content)
}

// Delete removes a document from the vector index and storage. Chunk,
// finding, and extraction rows cascade with the document.
func (ing *Ingestor) Delete(ctx context.Context, id string) error {
	if err := ing.vectorIndex.RemoveDocument(ctx, id); err != nil {
		return fmt.Errorf("remove from vector index: %w", err)
	}
	if err := ing.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if ing.logger != nil {
		ing.logger.Debug("document deleted", zap.String("document_id", id))
	}
	return nil
}

// RebuildVectorIndex loads every stored chunk vector into the index. Called
// at startup when no index snapshot exists on disk.
func (ing *Ingestor) RebuildVectorIndex(ctx context.Context) (int, error) {
	entries, err := ing.storage.AllChunkVectors(ctx)
	if err != nil {
		return 0, fmt.Errorf("load chunk vectors: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := ing.vectorIndex.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("rebuild vector index: %w", err)
	}
	return len(entries), nil
}
