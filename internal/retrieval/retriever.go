// Package retrieval implements embedding-based chunk retrieval and
// retrieval-augmented question answering over ingested contracts.
package retrieval

import (
	"context"
	"fmt"

	"github.com/hyperjump/keiyaku/internal/llm"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/internal/vector"
)

// Result pairs a hydrated chunk with its similarity score, ordered by
// descending score.
type Result struct {
	Chunk *models.Chunk
	Score float64
}

// Retriever embeds a question and finds the most similar chunks.
type Retriever struct {
	client  llm.Client
	index   vector.Index
	storage storage.Storage
}

// NewRetriever creates a retriever.
func NewRetriever(client llm.Client, index vector.Index, store storage.Storage) *Retriever {
	return &Retriever{client: client, index: index, storage: store}
}

// Retrieve returns up to k chunks ranked by cosine similarity to the
// question, optionally restricted to docIDs. Zero and negative scores are
// dropped: a degraded (zero-vector) chunk never ranks. The error wraps
// llm.ErrUnavailable when the embedding capability is down.
func (r *Retriever) Retrieve(ctx context.Context, question string, docIDs []string, k int) ([]Result, error) {
	queryVec, err := r.client.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := r.index.Search(ctx, queryVec, k, docIDs)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	ids := make([]string, 0, len(matches))
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		if m.Score <= 0 {
			continue
		}
		ids = append(ids, m.ChunkID)
		scores[m.ChunkID] = m.Score
	}
	if len(ids) == 0 {
		return nil, nil
	}

	chunks, err := r.storage.GetChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}
	byID := make(map[string]*models.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	// Preserve the index ranking; chunks missing from storage (deleted
	// between search and hydration) are skipped.
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := byID[id]; ok {
			results = append(results, Result{Chunk: chunk, Score: scores[id]})
		}
	}
	return results, nil
}
