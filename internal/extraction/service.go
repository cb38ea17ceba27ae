package extraction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/keiyaku/internal/llm"
	"github.com/hyperjump/keiyaku/internal/metrics"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/storage"
)

// Service runs structured field extraction for stored documents. The model
// path is tried first; when the completion capability is unavailable the
// rule-based fallback fills what it can. Either way the document ends up
// with exactly one current extraction.
type Service struct {
	storage  storage.Storage
	client   llm.Client
	counters *metrics.Counters
	logger   *zap.Logger
}

// NewService creates an extraction service.
func NewService(store storage.Storage, client llm.Client, counters *metrics.Counters, logger *zap.Logger) *Service {
	return &Service{
		storage:  store,
		client:   client,
		counters: counters,
		logger:   logger,
	}
}

// Extract produces and persists the extraction for a document, replacing
// any prior one.
func (s *Service) Extract(ctx context.Context, docID string) (*models.Extraction, error) {
	doc, err := s.storage.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	fields, method := s.extractFields(ctx, doc.FullText)

	confidence := FallbackConfidence
	if method == models.MethodModelBased {
		confidence = FieldConfidence(&fields)
	}

	extraction := &models.Extraction{
		ID:         uuid.New().String(),
		DocumentID: docID,
		Fields:     fields,
		Method:     method,
		Confidence: confidence,
	}
	if err := s.storage.ReplaceExtraction(ctx, extraction); err != nil {
		return nil, fmt.Errorf("store extraction: %w", err)
	}

	if s.counters != nil {
		s.counters.ExtractionsRun.Add(1)
	}
	if s.logger != nil {
		s.logger.Debug("extraction complete",
			zap.String("document_id", docID),
			zap.String("method", method),
			zap.Float64("confidence", confidence))
	}
	return extraction, nil
}

// extractFields branches on the capability result: a usable model response
// yields the model path, anything tagged unavailable yields the fallback.
// Malformed model JSON is treated the same as unavailability.
func (s *Service) extractFields(ctx context.Context, text string) (models.Fields, string) {
	var raw map[string]any
	err := s.client.CompleteJSON(ctx, systemPrompt, buildPrompt(text), &raw)
	if err == nil {
		return Normalize(raw), models.MethodModelBased
	}

	if s.counters != nil {
		s.counters.LLMFallbacks.Add(1)
	}
	if s.logger != nil {
		level := s.logger.Warn
		if !errors.Is(err, llm.ErrUnavailable) {
			level = s.logger.Error
		}
		level("model extraction failed, using rule-based fallback", zap.Error(err))
	}
	return ExtractFallback(text), models.MethodRuleBased
}
