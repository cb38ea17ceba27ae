// Package vector provides the embedding index: vector storage and
// cosine-similarity search over contract chunks.
package vector

import "context"

// Entry is one stored vector with its chunk identity. DocumentID enables
// document-scoped search; ChunkIndex is the deterministic tie-breaker.
type Entry struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Vector     []float32
}

// Result is a single search hit.
type Result struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Score      float64 // cosine similarity; higher is more relevant
}

// Index defines vector storage and similarity search. Search results are
// ordered by non-increasing score with ties broken by lowest chunk index,
// so identical inputs always produce identical rankings.
type Index interface {
	Add(ctx context.Context, entries []Entry) error
	// Search returns up to k hits. When documentIDs is non-empty, only
	// chunks of those documents are considered.
	Search(ctx context.Context, query []float32, k int, documentIDs []string) ([]*Result, error)
	RemoveDocument(ctx context.Context, documentID string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}
