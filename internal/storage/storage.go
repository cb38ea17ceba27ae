// Package storage defines the persistence interface for contracts, chunks,
// audit findings, extractions, and the query log.
package storage

import (
	"context"

	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/vector"
)

// Storage defines contract persistence operations.
type Storage interface {
	// Document operations. CreateDocumentWithChunks writes the document
	// and all its chunks atomically: a failed ingestion leaves no partial
	// rows behind.
	CreateDocumentWithChunks(ctx context.Context, doc *models.Document, chunks []*models.Chunk) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// Chunk operations
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunksByIDs(ctx context.Context, ids []string) ([]*models.Chunk, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.Chunk, error)
	AllChunkVectors(ctx context.Context) ([]vector.Entry, error)

	// Audit findings. ReplaceFindings swaps a document's findings
	// atomically so a re-run never leaves a mix of old and new rows.
	ReplaceFindings(ctx context.Context, docID string, findings []*models.Finding) error
	GetFindingsByDocumentID(ctx context.Context, docID string) ([]*models.Finding, error)
	ListFindings(ctx context.Context, docIDs []string) ([]*models.Finding, error)

	// Extractions. One extraction per document; ReplaceExtraction swaps
	// it atomically.
	ReplaceExtraction(ctx context.Context, extraction *models.Extraction) error
	GetExtraction(ctx context.Context, docID string) (*models.Extraction, error)

	// Query log
	LogQuery(ctx context.Context, entry *models.QueryLog) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
	CountFindings(ctx context.Context) (int64, error)

	Close() error
}
