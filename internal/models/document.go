// Package models defines core data structures for documents, chunks, findings,
// extractions, and citations.
package models

import "time"

// Document represents an ingested contract. Identity is immutable after
// ingestion: ID is derived from the content hash, so re-uploading the same
// bytes resolves to the same document.
type Document struct {
	ID          string     `json:"id" db:"id"`
	Filename    string     `json:"filename" db:"filename"`
	FileSize    int64      `json:"file_size" db:"file_size"`
	PageCount   int        `json:"page_count" db:"page_count"`
	ContentHash string     `json:"content_hash" db:"content_hash"`
	FullText    string     `json:"-" db:"full_text"`
	Pages       []PageSpan `json:"pages,omitempty" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// PageSpan maps a page number to its absolute character range in the
// document's full text. Spans are ordered and contiguous.
type PageSpan struct {
	PageNumber int `json:"page_number"`
	CharStart  int `json:"char_start"`
	CharEnd    int `json:"char_end"`
}

// Chunk is an offset-tracked segment of a document's text, the unit of
// embedding and retrieval. CharStart/CharEnd are absolute offsets into the
// original text, recorded once at chunk creation and never re-derived.
type Chunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Text       string    `json:"text" db:"text"`
	CharStart  int       `json:"char_start" db:"char_start"`
	CharEnd    int       `json:"char_end" db:"char_end"`
	PageNumber int       `json:"page_number" db:"page_number"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Degraded reports whether the chunk carries the zero-vector placeholder
// stored when the embedding capability was unavailable at ingest time. Such
// chunks stay retrievable by lookup but never rank in similarity search.
func (c *Chunk) Degraded() bool {
	for _, v := range c.Embedding {
		if v != 0 {
			return false
		}
	}
	return true
}

// Citation links an answer back to its source chunk and location.
type Citation struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	ChunkIndex int     `json:"chunk_index"`
	PageNumber *int    `json:"page_number"`
	CharStart  int     `json:"char_start"`
	CharEnd    int     `json:"char_end"`
	Score      float64 `json:"score"`
	Excerpt    string  `json:"excerpt"`
}
