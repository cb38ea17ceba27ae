package models

import (
	"fmt"
	"time"
)

// AskRequest is a question-answering request, optionally scoped to a set of
// document IDs (empty means all documents).
type AskRequest struct {
	Question     string   `json:"question"`
	DocumentIDs  []string `json:"document_ids,omitempty"`
	MaxCitations int      `json:"max_citations,omitempty"`
}

// Validate ensures the request has valid fields and sets defaults.
// Returns an error if the question is empty; otherwise normalizes the
// citation limit.
func (q *AskRequest) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if q.MaxCitations <= 0 {
		q.MaxCitations = 5
	}
	if q.MaxCitations > 20 {
		q.MaxCitations = 20
	}
	return nil
}

// AskResponse is the answer to a question with its supporting citations.
// Citations are ordered by descending relevance score, not document order.
type AskResponse struct {
	QueryID        string      `json:"query_id"`
	Question       string      `json:"question"`
	Answer         string      `json:"answer"`
	Citations      []*Citation `json:"citations"`
	ResponseTimeMs int64       `json:"response_time_ms"`
}

// QueryLog is a persisted record of one answered question.
type QueryLog struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	DocumentIDs    []string  `json:"document_ids,omitempty"`
	CitationCount  int       `json:"citation_count"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
