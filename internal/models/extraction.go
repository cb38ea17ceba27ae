package models

import "time"

// Signatory is a contract signatory with an optional title.
type Signatory struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// Fields is the fixed 12-field extraction schema. Scalar fields are pointers
// so that "not found" marshals as an explicit null; array fields (Parties,
// Signatories) default to empty slices instead of null so downstream
// iteration never needs a nil check. The asymmetry is deliberate and must
// be kept.
type Fields struct {
	Parties              []string    `json:"parties"`
	EffectiveDate        *string     `json:"effective_date"`
	Term                 *string     `json:"term"`
	GoverningLaw         *string     `json:"governing_law"`
	PaymentTerms         *string     `json:"payment_terms"`
	Termination          *string     `json:"termination"`
	AutoRenewal          *string     `json:"auto_renewal"`
	Confidentiality      *string     `json:"confidentiality"`
	Indemnity            *string     `json:"indemnity"`
	LiabilityCapAmount   *float64    `json:"liability_cap_amount"`
	LiabilityCapCurrency *string     `json:"liability_cap_currency"`
	Signatories          []Signatory `json:"signatories"`
}

// FieldCount is the number of fields in the extraction schema.
const FieldCount = 12

// FilledCount returns how many of the 12 fields hold a value.
func (f *Fields) FilledCount() int {
	n := 0
	if len(f.Parties) > 0 {
		n++
	}
	if f.EffectiveDate != nil {
		n++
	}
	if f.Term != nil {
		n++
	}
	if f.GoverningLaw != nil {
		n++
	}
	if f.PaymentTerms != nil {
		n++
	}
	if f.Termination != nil {
		n++
	}
	if f.AutoRenewal != nil {
		n++
	}
	if f.Confidentiality != nil {
		n++
	}
	if f.Indemnity != nil {
		n++
	}
	if f.LiabilityCapAmount != nil {
		n++
	}
	if f.LiabilityCapCurrency != nil {
		n++
	}
	if len(f.Signatories) > 0 {
		n++
	}
	return n
}

// Extraction is the current structured extraction for a document. At most
// one exists per document; re-extraction replaces it atomically.
type Extraction struct {
	ID         string    `json:"extraction_id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Fields     Fields    `json:"fields" db:"-"`
	Method     string    `json:"extraction_method" db:"method"`
	Confidence float64   `json:"confidence_score" db:"confidence_score"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
