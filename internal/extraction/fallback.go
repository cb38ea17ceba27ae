package extraction

import (
	"regexp"
	"strings"

	"github.com/hyperjump/keiyaku/internal/models"
)

// FallbackConfidence is the fixed confidence for rule-based extraction,
// deliberately below what the model path reports for a well-filled record.
const FallbackConfidence = 0.6

var (
	reEffectiveDate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)effective\s+date[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)dated\s+(\d{1,2}\s+\w+\s+\d{4})`),
		regexp.MustCompile(`(?i)as\s+of\s+(\w+\s+\d{1,2},\s+\d{4})`),
	}
	reGoverningLaw = regexp.MustCompile(`(?i)governed\s+by\s+.*?laws?\s+of\s+([\w\s]+?)(?:\.|,|;)`)
	reTerm         = regexp.MustCompile(`(?i)term\s+of\s+([\w\s]+?)(?:\.|,|;)`)
)

// ExtractFallback is the rule-based path used when the completion capability
// is unavailable. It fills only the fields with reliable textual anchors;
// everything else stays null.
func ExtractFallback(text string) models.Fields {
	f := models.Fields{
		Parties:     []string{},
		Signatories: []models.Signatory{},
	}

	for _, pattern := range reEffectiveDate {
		if m := pattern.FindStringSubmatch(text); m != nil {
			date := m[1]
			f.EffectiveDate = &date
			break
		}
	}

	if m := reGoverningLaw.FindStringSubmatch(text); m != nil {
		law := strings.TrimSpace(m[1])
		f.GoverningLaw = &law
	}

	if m := reTerm.FindStringSubmatch(text); m != nil {
		term := strings.TrimSpace(m[1])
		f.Term = &term
	}

	return f
}
