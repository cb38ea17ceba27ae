package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/keiyaku/pkg/utils"
)

// OpenAIClient implements Client against the OpenAI API (or any
// API-compatible endpoint via BaseURL).
type OpenAIClient struct {
	client          *openai.Client
	completionModel string
	embeddingModel  string
	dimensions      int
	timeout         time.Duration
}

// OpenAIConfig holds settings for the OpenAI client.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	CompletionModel string
	EmbeddingModel  string
	Dimensions      int
	Timeout         time.Duration
}

// NewOpenAIClient creates a client. APIKey is required; other fields fall
// back to sensible defaults.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.CompletionModel == "" {
		cfg.CompletionModel = openai.GPT4oMini
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(openai.SmallEmbedding3)
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 1536
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:          openai.NewClientWithConfig(clientCfg),
		completionModel: cfg.CompletionModel,
		embeddingModel:  cfg.EmbeddingModel,
		dimensions:      cfg.Dimensions,
		timeout:         cfg.Timeout,
	}, nil
}

// Embed returns the embedding for a single text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrUnavailable)
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in one API call, preserving input order.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.embeddingModel),
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings: %v", ErrUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrUnavailable, len(texts), len(resp.Data))
	}
	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		emb := d.Embedding
		// Dimension-truncated embeddings are not unit-norm; cosine ranking
		// assumes they are.
		utils.NormalizeL2(emb)
		embeddings[d.Index] = emb
	}
	return embeddings, nil
}

// Complete returns a free-text chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.completionModel,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: completion: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON requests a JSON-object completion and unmarshals it into out.
// Malformed JSON from the model counts as capability failure so callers
// take their rule-based fallback.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, system, user string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.completionModel,
		Temperature: float32(TemperatureExtraction),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: structured completion: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: structured completion returned no choices", ErrUnavailable)
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("%w: decode structured completion: %v", ErrUnavailable, err)
	}
	return nil
}

// Dimensions returns the embedding vector size.
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}

// Close releases resources.
func (c *OpenAIClient) Close() error {
	return nil
}
