package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/keiyaku/internal/llm"
	"github.com/hyperjump/keiyaku/internal/metrics"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/pkg/utils"
)

// NoAnswerText is the fixed response when retrieval finds nothing relevant
// or the completion capability is unavailable. Deterministic by design: the
// system never fabricates an answer.
const NoAnswerText = "I cannot find this information in the provided contracts."

// citationExcerptLen bounds the excerpt carried in each citation.
const citationExcerptLen = 200

const answerSystemPrompt = "You are a legal document analyst. Answer questions accurately " +
	"based on the provided contract text. Include specific details and quote relevant " +
	"passages when possible."

// Answerer runs the full question-answering flow: retrieve, assemble
// context under the character budget, complete, cite, log.
type Answerer struct {
	retriever     *Retriever
	client        llm.Client
	storage       storage.Storage
	counters      *metrics.Counters
	logger        *zap.Logger
	contextBudget int
}

// NewAnswerer creates an answerer. contextBudget caps the total characters
// of chunk text sent to the completion model.
func NewAnswerer(retriever *Retriever, client llm.Client, store storage.Storage,
	counters *metrics.Counters, logger *zap.Logger, contextBudget int) *Answerer {
	return &Answerer{
		retriever:     retriever,
		client:        client,
		storage:       store,
		counters:      counters,
		logger:        logger,
		contextBudget: contextBudget,
	}
}

// Answer answers a question about the ingested contracts. An unavailable
// capability or an empty retrieval both produce the fixed no-answer
// response with whatever citations were found, never an error.
func (a *Answerer) Answer(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	results, err := a.retriever.Retrieve(ctx, req.Question, req.DocumentIDs, req.MaxCitations)
	if err != nil {
		if !errors.Is(err, llm.ErrUnavailable) {
			return nil, err
		}
		if a.counters != nil {
			a.counters.LLMFallbacks.Add(1)
		}
		if a.logger != nil {
			a.logger.Warn("embedding unavailable for question", zap.Error(err))
		}
		results = nil
	}

	answer := NoAnswerText
	if len(results) > 0 {
		answer = a.generateAnswer(ctx, req.Question, results)
	}

	citations := buildCitations(results)
	resp := &models.AskResponse{
		QueryID:        uuid.New().String(),
		Question:       req.Question,
		Answer:         answer,
		Citations:      citations,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}

	if err := a.storage.LogQuery(ctx, &models.QueryLog{
		ID:             resp.QueryID,
		Question:       req.Question,
		Answer:         answer,
		DocumentIDs:    req.DocumentIDs,
		CitationCount:  len(citations),
		ResponseTimeMs: resp.ResponseTimeMs,
	}); err != nil {
		return nil, fmt.Errorf("log query: %w", err)
	}

	if a.counters != nil {
		a.counters.QueriesAnswered.Add(1)
	}
	return resp, nil
}

// generateAnswer assembles the context and calls the completion model. Any
// capability failure collapses to the fixed no-answer text.
func (a *Answerer) generateAnswer(ctx context.Context, question string, results []Result) string {
	answer, err := a.client.Complete(ctx, answerSystemPrompt,
		buildAnswerPrompt(question, assembleContext(results, a.contextBudget)),
		llm.TemperatureAnswer)
	if err != nil {
		if a.counters != nil {
			a.counters.LLMFallbacks.Add(1)
		}
		if a.logger != nil {
			a.logger.Warn("completion unavailable for question", zap.Error(err))
		}
		return NoAnswerText
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return NoAnswerText
	}
	return answer
}

// assembleContext joins chunk texts under the budget, dropping whole
// lowest-ranked chunks rather than splitting one mid-text.
func assembleContext(results []Result, budget int) string {
	const sep = "\n\n"
	var b strings.Builder
	used := 0
	for _, r := range results {
		need := len(r.Chunk.Text)
		if used > 0 {
			need += len(sep)
		}
		if budget > 0 && used+need > budget {
			break
		}
		if used > 0 {
			b.WriteString(sep)
		}
		b.WriteString(r.Chunk.Text)
		used += need
	}
	return b.String()
}

func buildAnswerPrompt(question, context string) string {
	return fmt.Sprintf(`Answer the following question based on the provided contract excerpts. If the answer cannot be found in the context, say %q

Context:
%s

Question: %s

Answer:`, NoAnswerText, context, question)
}

func buildCitations(results []Result) []*models.Citation {
	citations := make([]*models.Citation, 0, len(results))
	for _, r := range results {
		page := r.Chunk.PageNumber
		citations = append(citations, &models.Citation{
			DocumentID: r.Chunk.DocumentID,
			ChunkID:    r.Chunk.ID,
			ChunkIndex: r.Chunk.ChunkIndex,
			PageNumber: &page,
			CharStart:  r.Chunk.CharStart,
			CharEnd:    r.Chunk.CharEnd,
			Score:      r.Score,
			Excerpt:    utils.Truncate(r.Chunk.Text, citationExcerptLen),
		})
	}
	return citations
}
