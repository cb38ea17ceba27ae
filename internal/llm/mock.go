package llm

import (
	"context"
	"encoding/json"
	"math"
)

// MockClient is a deterministic client for tests. Embeddings derive from a
// text hash so the same text always gets the same unit vector; completions
// return canned responses. Set Unavailable to simulate capability failure.
type MockClient struct {
	dimensions   int
	Unavailable  bool
	Completion   string
	JSONResponse string
}

// NewMockClient returns a mock with the given embedding dimensions.
func NewMockClient(dimensions int) *MockClient {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockClient{dimensions: dimensions}
}

// Embed returns a deterministic unit vector based on the text hash.
func (m *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Unavailable {
		return nil, ErrUnavailable
	}
	h := hashString(text)
	emb := make([]float32, m.dimensions)
	for i := 0; i < m.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range emb {
			emb[i] *= float32(norm)
		}
	}
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (m *MockClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Unavailable {
		return nil, ErrUnavailable
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Complete returns the canned completion.
func (m *MockClient) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if m.Unavailable {
		return "", ErrUnavailable
	}
	return m.Completion, nil
}

// CompleteJSON unmarshals the canned JSON response into out.
func (m *MockClient) CompleteJSON(ctx context.Context, system, user string, out any) error {
	if m.Unavailable {
		return ErrUnavailable
	}
	return json.Unmarshal([]byte(m.JSONResponse), out)
}

// Dimensions returns the embedding dimension.
func (m *MockClient) Dimensions() int {
	return m.dimensions
}

// Close is a no-op for MockClient.
func (m *MockClient) Close() error {
	return nil
}

// hashString returns a deterministic hash of s.
func hashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
