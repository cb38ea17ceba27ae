package audit

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/keiyaku/internal/models"
)

func findByType(findings []*models.Finding, riskType string) []*models.Finding {
	var out []*models.Finding
	for _, f := range findings {
		if f.RiskType == riskType {
			out = append(out, f)
		}
	}
	return out
}

func TestAutoRenewalNoticeThresholds(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name     string
		days     string
		severity models.Severity
		want     int
	}{
		{"short notice is high", "10", models.SeverityHigh, 1},
		{"borderline notice is medium", "20", models.SeverityMedium, 1},
		{"adequate notice is clean", "45", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "This Agreement shall automatically renew for successive one-year terms " +
				"unless either party gives written cancellation notice at least " + tt.days + " days prior to renewal."
			findings := e.Audit("doc:1", text, nil)
			got := findByType(findings, "auto_renewal_short_notice")
			if len(got) != tt.want {
				t.Fatalf("got %d auto-renewal findings, want %d (all: %+v)", len(got), tt.want, findings)
			}
			if tt.want == 1 {
				if got[0].Severity != tt.severity {
					t.Errorf("severity = %s, want %s", got[0].Severity, tt.severity)
				}
				if got[0].Confidence != 0.9 {
					t.Errorf("confidence = %v, want 0.9", got[0].Confidence)
				}
			}
			if tt.want == 0 && len(findings) != 0 {
				t.Errorf("expected no findings at all, got %+v", findings)
			}
		})
	}
}

func TestAutoRenewalUnclearNotice(t *testing.T) {
	e := NewEngine()
	text := "This Agreement shall automatically renew for successive one-year terms upon expiry."
	findings := e.Audit("doc:1", text, nil)

	got := findByType(findings, "auto_renewal_unclear_notice")
	if len(got) != 1 {
		t.Fatalf("got %d unclear-notice findings, want 1", len(got))
	}
	if got[0].Severity != models.SeverityMedium || got[0].Confidence != 0.8 {
		t.Errorf("severity/confidence = %s/%v, want medium/0.8", got[0].Severity, got[0].Confidence)
	}
	if got[0].CharStart != nil {
		t.Error("absence-style finding should carry no offsets")
	}
}

func TestUnlimitedLiabilityExactlyOneCritical(t *testing.T) {
	e := NewEngine()
	text := "The Supplier's liability under this Agreement shall be unlimited and not subject to any cap."
	findings := e.Audit("doc:1", text, nil)

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want exactly 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.RiskType != "unlimited_liability" {
		t.Errorf("risk type = %s", f.RiskType)
	}
	if f.Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want critical", f.Severity)
	}
	if f.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", f.Confidence)
	}
	if f.CharStart == nil || f.CharEnd == nil {
		t.Fatal("expected evidence offsets")
	}
	if text[*f.CharStart:*f.CharEnd] != f.EvidenceText {
		t.Error("evidence must be the verbatim span at the recorded offsets")
	}
}

func TestNoLiabilityCapAbsenceInference(t *testing.T) {
	e := NewEngine()
	text := "Each party's liability shall be determined in accordance with applicable law."
	findings := e.Audit("doc:1", text, nil)

	got := findByType(findings, "no_liability_cap")
	if len(got) != 1 {
		t.Fatalf("got %d no-cap findings, want 1: %+v", len(got), findings)
	}
	if got[0].Severity != models.SeverityHigh || got[0].Confidence != 0.7 {
		t.Errorf("severity/confidence = %s/%v, want high/0.7", got[0].Severity, got[0].Confidence)
	}
	if got[0].CharStart != nil || got[0].CharEnd != nil {
		t.Error("absence inference has no evidence span")
	}

	// A stated cap silences the inference.
	capped := "Supplier's aggregate liability is capped at $100,000 for all claims."
	if got := findByType(e.Audit("doc:1", capped, nil), "no_liability_cap"); len(got) != 0 {
		t.Errorf("capped liability still produced %d findings", len(got))
	}
}

func TestBroadIndemnityCarveOut(t *testing.T) {
	e := NewEngine()

	broad := "Supplier shall indemnify Customer against any and all claims arising out of the services."
	got := findByType(e.Audit("doc:1", broad, nil), "broad_indemnity")
	if len(got) != 1 || got[0].Severity != models.SeverityHigh {
		t.Fatalf("broad clause: got %+v, want one high finding", got)
	}

	carved := "Supplier shall indemnify Customer against any and all claims, except claims caused by Customer's own negligence."
	got = findByType(e.Audit("doc:1", carved, nil), "broad_indemnity")
	if len(got) != 1 || got[0].Severity != models.SeverityMedium {
		t.Fatalf("carved clause: got %+v, want one medium finding", got)
	}
}

func TestUnilateralTermination(t *testing.T) {
	e := NewEngine()
	text := "Customer may terminate this Agreement at any time upon written notice to Supplier."
	got := findByType(e.Audit("doc:1", text, nil), "unilateral_termination")
	if len(got) != 1 {
		t.Fatalf("got %d termination findings, want 1", len(got))
	}
	if got[0].Severity != models.SeverityMedium || got[0].Confidence != 0.8 {
		t.Errorf("severity/confidence = %s/%v, want medium/0.8", got[0].Severity, got[0].Confidence)
	}
}

func TestAssignmentRestrictionDowngrade(t *testing.T) {
	e := NewEngine()

	strict := "Supplier may not assign this Agreement without the prior written consent of Customer."
	got := findByType(e.Audit("doc:1", strict, nil), "assignment_restriction")
	if len(got) != 1 || got[0].Severity != models.SeverityMedium {
		t.Fatalf("strict clause: got %+v, want one medium finding", got)
	}

	reasonable := "Supplier may not assign this Agreement without the prior written consent of Customer, " +
		"which consent shall not be unreasonably withheld."
	got = findByType(e.Audit("doc:1", reasonable, nil), "assignment_restriction")
	if len(got) != 1 || got[0].Severity != models.SeverityLow {
		t.Fatalf("reasonable clause: got %+v, want one low finding", got)
	}
	if got[0].Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", got[0].Confidence)
	}
}

func TestPerpetualConfidentiality(t *testing.T) {
	e := NewEngine()
	text := "The confidentiality obligations of this Section shall survive termination of this Agreement."
	got := findByType(e.Audit("doc:1", text, nil), "perpetual_confidentiality")
	if len(got) != 1 || got[0].Severity != models.SeverityMedium {
		t.Fatalf("got %+v, want one medium finding", got)
	}
}

func TestAuditDeterminism(t *testing.T) {
	e := NewEngine()
	text := "This Agreement shall automatically renew unless cancelled with 10 days notice. " +
		"Supplier shall indemnify Customer against any and all claims. " +
		"Customer may terminate this Agreement at any time. " +
		"Supplier may not assign this Agreement without the written consent of Customer. " +
		"The Supplier's liability shall be unlimited in all respects."

	first := e.Audit("doc:1", text, nil)
	second := e.Audit("doc:1", text, nil)

	if len(first) == 0 {
		t.Fatal("expected findings")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated audits of unchanged text must be identical")
	}
}

func TestAuditFindingsSortedByOffset(t *testing.T) {
	e := NewEngine()
	text := "Customer may terminate this Agreement at any time. " +
		"Supplier shall indemnify Customer against any and all claims."
	findings := e.Audit("doc:1", text, nil)

	prev := -1
	for _, f := range findings {
		if f.CharStart == nil {
			continue
		}
		if *f.CharStart < prev {
			t.Fatalf("findings not sorted by offset: %d after %d", *f.CharStart, prev)
		}
		prev = *f.CharStart
	}
}

func TestAuditSameCategorySameOffsetDeduplicated(t *testing.T) {
	e := NewEngine()
	// Matches two indemnity signatures at the same start offset; only one
	// finding survives.
	text := "Supplier shall indemnify Customer against any and all claims, including without limitation attorney fees."
	got := findByType(e.Audit("doc:1", text, nil), "broad_indemnity")
	if len(got) != 1 {
		t.Fatalf("got %d indemnity findings, want 1 after dedup", len(got))
	}
}

func TestAuditPageAssignment(t *testing.T) {
	e := NewEngine()
	text := "Preamble text on the first page of this document. " +
		"Customer may terminate this Agreement at any time."
	pages := []models.PageSpan{
		{PageNumber: 1, CharStart: 0, CharEnd: 49},
		{PageNumber: 2, CharStart: 50, CharEnd: len(text)},
	}
	got := findByType(e.Audit("doc:1", text, pages), "unilateral_termination")
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1", len(got))
	}
	if got[0].PageNumber == nil || *got[0].PageNumber != 2 {
		t.Errorf("page = %v, want 2", got[0].PageNumber)
	}
}

func TestAuditEmptyText(t *testing.T) {
	e := NewEngine()
	if findings := e.Audit("doc:1", "", nil); len(findings) != 0 {
		t.Errorf("empty text produced %d findings", len(findings))
	}
}

func TestEvidenceClippedToLimit(t *testing.T) {
	e := NewEngine()
	// The evidence window extends 100 characters past the match but never
	// beyond the limit.
	text := "The Supplier's liability shall be unlimited. Additional text follows the clause here to pad the window out."
	findings := findByType(e.Audit("doc:1", text, nil), "unlimited_liability")
	if len(findings) != 1 {
		t.Fatalf("got %d findings", len(findings))
	}
	if len(findings[0].EvidenceText) > EvidenceMaxLen {
		t.Errorf("evidence length %d exceeds %d", len(findings[0].EvidenceText), EvidenceMaxLen)
	}
}

func TestEvidenceClipKeepsValidUTF8(t *testing.T) {
	// A clip position landing inside a multi-byte rune backs up to the
	// rune boundary instead of emitting a partial encoding.
	s := strings.Repeat("a", EvidenceMaxLen-1) + strings.Repeat("§", 10)
	got := clipEvidence(s)
	if !utf8.ValidString(got) {
		t.Fatalf("clipped evidence is not valid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) > EvidenceMaxLen {
		t.Errorf("clipped evidence length %d exceeds %d", len(got), EvidenceMaxLen)
	}
}
