// Package audit implements the deterministic rule engine for risky clause
// detection. Each audit call is a pure function of the document text: the
// same input yields the same finding set, byte for byte.
package audit

import (
	"fmt"
	"sort"

	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/pkg/utils"
)

// EvidenceMaxLen bounds the verbatim evidence excerpt so it fits a UI
// listing.
const EvidenceMaxLen = 200

// Engine evaluates the rule tables against full document text. Rules run on
// the whole text rather than per chunk so patterns spanning chunk
// boundaries still match.
type Engine struct{}

// NewEngine creates a rule engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Audit scans text and returns the full finding set for the document.
// Findings carry deterministic IDs derived from document, category, and
// offset, so re-auditing unchanged text reproduces the identical set.
// Duplicate matches of the same category at the same offset collapse to one
// finding; distinct categories at the same offset all survive.
func (e *Engine) Audit(docID, text string, pages []models.PageSpan) []*models.Finding {
	var findings []*models.Finding
	seen := make(map[string]bool)
	matched := make(map[string]bool)

	for _, rule := range matchRules {
		for _, pattern := range rule.patterns {
			for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
				start, end := loc[0], loc[1]
				key := fmt.Sprintf("%s:%d", rule.category, start)
				if seen[key] {
					continue
				}

				groups := captureGroups(text, loc)
				result := rule.assess(groups, contextWindow(text, start, end))
				if result == nil {
					continue
				}
				seen[key] = true
				matched[rule.category] = true

				evidenceEnd := end + 100
				if evidenceEnd > len(text) {
					evidenceEnd = len(text)
				}
				s, en := start, evidenceEnd
				findings = append(findings, &models.Finding{
					ID:              fmt.Sprintf("finding:%s:%s:%d", docID, rule.category, start),
					DocumentID:      docID,
					RiskType:        rule.category,
					Severity:        result.severity,
					Title:           result.title,
					Description:     result.description,
					EvidenceText:    clipEvidence(text[start:evidenceEnd]),
					CharStart:       &s,
					CharEnd:         &en,
					PageNumber:      pageRef(pages, start),
					Confidence:      result.confidence,
					DetectionMethod: models.MethodRuleBased,
				})
			}
		}
	}

	for _, rule := range absenceRules {
		if rule.suppressedBy != "" && matched[rule.suppressedBy] {
			continue
		}
		if !rule.present.MatchString(text) || rule.expected.MatchString(text) {
			continue
		}
		evidence := rule.evidence
		if evidence == "" {
			if loc := rule.present.FindStringIndex(text); loc != nil {
				end := loc[0] + EvidenceMaxLen
				if end > len(text) {
					end = len(text)
				}
				evidence = text[loc[0]:end]
			}
		}
		findings = append(findings, &models.Finding{
			ID:              fmt.Sprintf("finding:%s:%s", docID, rule.category),
			DocumentID:      docID,
			RiskType:        rule.category,
			Severity:        rule.finding.severity,
			Title:           rule.finding.title,
			Description:     rule.finding.description,
			EvidenceText:    evidence,
			Confidence:      rule.finding.confidence,
			DetectionMethod: models.MethodRuleBased,
		})
	}

	sortFindings(findings)
	return findings
}

// sortFindings orders by offset, then category; absence findings (no
// offset) sort last. The order is part of the determinism contract.
func sortFindings(findings []*models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		switch {
		case a.CharStart == nil && b.CharStart == nil:
			return a.RiskType < b.RiskType
		case a.CharStart == nil:
			return false
		case b.CharStart == nil:
			return true
		case *a.CharStart != *b.CharStart:
			return *a.CharStart < *b.CharStart
		default:
			return a.RiskType < b.RiskType
		}
	})
}

func captureGroups(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

// contextWindow returns the text surrounding a match, used for carve-out
// and qualifier checks in the same clause.
func contextWindow(text string, start, end int) string {
	from := start - windowBefore
	if from < 0 {
		from = 0
	}
	to := end + windowAfter
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}

func clipEvidence(s string) string {
	if len(s) > EvidenceMaxLen {
		return s[:utils.PrevRuneStart(s, EvidenceMaxLen)]
	}
	return s
}

// pageRef returns the page containing pos, or nil when no page map exists.
func pageRef(pages []models.PageSpan, pos int) *int {
	if len(pages) == 0 {
		return nil
	}
	for _, p := range pages {
		if p.CharStart <= pos && pos <= p.CharEnd {
			n := p.PageNumber
			return &n
		}
	}
	n := pages[len(pages)-1].PageNumber
	return &n
}
