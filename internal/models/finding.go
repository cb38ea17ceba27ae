package models

import "time"

// Severity classifies how risky a finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Detection methods for findings and extractions.
const (
	MethodRuleBased  = "rule_based"
	MethodModelBased = "model_based"
)

// Finding is a single detected risk instance. Immutable once created; a
// re-audit replaces the document's whole finding set rather than patching it.
type Finding struct {
	ID              string    `json:"finding_id" db:"id"`
	DocumentID      string    `json:"document_id" db:"document_id"`
	RiskType        string    `json:"risk_type" db:"risk_type"`
	Severity        Severity  `json:"severity" db:"severity"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	EvidenceText    string    `json:"evidence,omitempty" db:"evidence_text"`
	CharStart       *int      `json:"char_start" db:"char_start"`
	CharEnd         *int      `json:"char_end" db:"char_end"`
	PageNumber      *int      `json:"page,omitempty" db:"page_number"`
	Confidence      float64   `json:"confidence_score" db:"confidence_score"`
	DetectionMethod string    `json:"detection_method" db:"detection_method"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// AuditReport is the response for a risk audit: the full finding set plus
// per-severity counts.
type AuditReport struct {
	DocumentID    string     `json:"document_id"`
	Findings      []*Finding `json:"findings"`
	TotalFindings int        `json:"total_findings"`
	CriticalCount int        `json:"critical_count"`
	HighCount     int        `json:"high_count"`
	MediumCount   int        `json:"medium_count"`
	LowCount      int        `json:"low_count"`
}

// NewAuditReport builds a report with severity counts from findings.
func NewAuditReport(documentID string, findings []*Finding) *AuditReport {
	r := &AuditReport{
		DocumentID:    documentID,
		Findings:      findings,
		TotalFindings: len(findings),
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			r.CriticalCount++
		case SeverityHigh:
			r.HighCount++
		case SeverityMedium:
			r.MediumCount++
		case SeverityLow:
			r.LowCount++
		}
	}
	return r
}
