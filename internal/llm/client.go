// Package llm provides the external embedding and completion capability.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable marks the external capability as unreachable or erroring.
// Callers branch on it with errors.Is and fall back to their rule-based
// path (extraction) or a fixed no-answer response (Q&A); it is never a
// reason to fail a whole request.
var ErrUnavailable = errors.New("llm capability unavailable")

// Temperatures for the two completion modes: extraction wants
// deterministic-leaning output, free-text answers slightly more freedom.
const (
	TemperatureExtraction = 0.1
	TemperatureAnswer     = 0.2
)

// Client is the external LLM capability: embeddings and completions.
// All methods honor the context deadline; implementations must bound each
// call with a timeout so a hung upstream never stalls a request.
type Client interface {
	// Embed returns a fixed-length vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Complete returns a free-text completion for the given prompts.
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
	// CompleteJSON requests a JSON-object completion and unmarshals it into out.
	CompleteJSON(ctx context.Context, system, user string, out any) error
	// Dimensions returns the embedding vector size.
	Dimensions() int
	Close() error
}
