// Package cli provides output formatting for the Keiyaku command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

const rule = "─────────────────────────────────────────────────────────"

// WriteAnswer writes a question-answering response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnswer(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintf(w, "\n%s\n", resp.Answer)
	if len(resp.Citations) > 0 {
		fmt.Fprintf(w, "\nSources (%d citation(s), %dms):\n", len(resp.Citations), resp.ResponseTimeMs)
		for i, c := range resp.Citations {
			fmt.Fprintln(w, rule)
			fmt.Fprintf(w, "[%d] Score: %.4f | Document: %s", i+1, c.Score, c.DocumentID)
			if c.PageNumber != nil {
				fmt.Fprintf(w, " | Page: %d", *c.PageNumber)
			}
			fmt.Fprintf(w, " | Chars: %d-%d\n", c.CharStart, c.CharEnd)
			fmt.Fprintf(w, "%s\n", c.Excerpt)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// WriteAuditReport writes a risk audit report to w in the given format.
func WriteAuditReport(w io.Writer, report *models.AuditReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "\n%d finding(s) for %s (critical: %d, high: %d, medium: %d, low: %d)\n\n",
		report.TotalFindings, report.DocumentID,
		report.CriticalCount, report.HighCount, report.MediumCount, report.LowCount)
	for _, f := range report.Findings {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "[%s] %s (%s, confidence %.2f)\n",
			strings.ToUpper(string(f.Severity)), f.Title, f.RiskType, f.Confidence)
		fmt.Fprintf(w, "%s\n", f.Description)
		if f.CharStart != nil && f.CharEnd != nil {
			fmt.Fprintf(w, "Location: chars %d-%d", *f.CharStart, *f.CharEnd)
			if f.PageNumber != nil {
				fmt.Fprintf(w, " (page %d)", *f.PageNumber)
			}
			fmt.Fprintln(w)
		}
		if f.EvidenceText != "" {
			fmt.Fprintf(w, "Evidence: %s\n", utils.Truncate(f.EvidenceText, 200))
		}
	}
	fmt.Fprintln(w)
	return nil
}

// WriteExtraction writes extracted contract fields to w in the given format.
func WriteExtraction(w io.Writer, ex *models.Extraction, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	}
	fmt.Fprintf(w, "\nExtraction for %s (method: %s, confidence %.2f)\n\n",
		ex.DocumentID, ex.Method, ex.Confidence)
	fmt.Fprintf(w, "%-24s %s\n", "Parties:", strings.Join(ex.Fields.Parties, "; "))
	writeField(w, "Effective date", ex.Fields.EffectiveDate)
	writeField(w, "Term", ex.Fields.Term)
	writeField(w, "Governing law", ex.Fields.GoverningLaw)
	writeField(w, "Payment terms", ex.Fields.PaymentTerms)
	writeField(w, "Termination", ex.Fields.Termination)
	writeField(w, "Auto-renewal", ex.Fields.AutoRenewal)
	writeField(w, "Confidentiality", ex.Fields.Confidentiality)
	writeField(w, "Indemnity", ex.Fields.Indemnity)
	if ex.Fields.LiabilityCapAmount != nil {
		fmt.Fprintf(w, "%-24s %.2f\n", "Liability cap amount:", *ex.Fields.LiabilityCapAmount)
	} else {
		fmt.Fprintf(w, "%-24s -\n", "Liability cap amount:")
	}
	writeField(w, "Liability cap currency", ex.Fields.LiabilityCapCurrency)
	names := make([]string, 0, len(ex.Fields.Signatories))
	for _, s := range ex.Fields.Signatories {
		if s.Title != "" {
			names = append(names, fmt.Sprintf("%s (%s)", s.Name, s.Title))
		} else {
			names = append(names, s.Name)
		}
	}
	fmt.Fprintf(w, "%-24s %s\n\n", "Signatories:", strings.Join(names, "; "))
	return nil
}

func writeField(w io.Writer, label string, v *string) {
	if v != nil {
		fmt.Fprintf(w, "%-24s %s\n", label+":", *v)
		return
	}
	fmt.Fprintf(w, "%-24s -\n", label+":")
}

// WriteDocuments writes a document listing to w in the given format.
func WriteDocuments(w io.Writer, docs []*models.Document, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	fmt.Fprintf(w, "\n%d document(s)\n\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(w, "%s  %s  (%d page(s), %d bytes, added %s)\n",
			d.ID, d.Filename, d.PageCount, d.FileSize, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)
	return nil
}
