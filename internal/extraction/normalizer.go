// Package extraction turns contract text into the fixed 12-field structured
// record, via the completion model when available and a rule-based fallback
// when it is not.
package extraction

import (
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/keiyaku/internal/models"
)

// Normalize maps a loosely-typed field document (as decoded from model JSON
// output) into the canonical schema. Missing or mistyped scalar fields
// become nil; the array fields always come back non-nil so callers can
// range over them without a check. Numeric fields must parse to a number or
// are nulled.
func Normalize(raw map[string]any) models.Fields {
	f := models.Fields{
		Parties:     stringSlice(raw["parties"]),
		Signatories: signatorySlice(raw["signatories"]),
	}
	f.EffectiveDate = stringField(raw["effective_date"])
	f.Term = stringField(raw["term"])
	f.GoverningLaw = stringField(raw["governing_law"])
	f.PaymentTerms = stringField(raw["payment_terms"])
	f.Termination = stringField(raw["termination"])
	f.AutoRenewal = stringField(raw["auto_renewal"])
	f.Confidentiality = stringField(raw["confidentiality"])
	f.Indemnity = stringField(raw["indemnity"])
	f.LiabilityCapAmount = numberField(raw["liability_cap_amount"])
	f.LiabilityCapCurrency = stringField(raw["liability_cap_currency"])
	return f
}

func stringField(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}

// numberField accepts JSON numbers and numeric strings. Model output
// sometimes quotes amounts or keeps thousands separators ("1,000,000");
// anything that still fails to parse is nulled rather than propagated.
func numberField(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		cleaned = strings.TrimPrefix(cleaned, "$")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// stringSlice always returns a non-nil slice. Mixed-type arrays keep their
// string elements and drop the rest.
func stringSlice(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func signatorySlice(v any) []models.Signatory {
	out := []models.Signatory{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		switch entry := item.(type) {
		case map[string]any:
			name, _ := entry["name"].(string)
			title, _ := entry["title"].(string)
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, models.Signatory{Name: name, Title: strings.TrimSpace(title)})
			}
		case string:
			if entry = strings.TrimSpace(entry); entry != "" {
				out = append(out, models.Signatory{Name: entry})
			}
		}
	}
	return out
}

// FieldConfidence is the model-path confidence estimate: the filled share
// of the schema, rounded to two decimals.
func FieldConfidence(f *models.Fields) float64 {
	ratio := float64(f.FilledCount()) / float64(models.FieldCount)
	return math.Round(ratio*100) / 100
}
