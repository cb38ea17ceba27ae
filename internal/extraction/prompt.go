package extraction

import "fmt"

// promptCharBudget caps how much contract text goes into the extraction
// prompt. Roughly 6000 tokens at ~4 characters per token.
const promptCharBudget = 24000

const systemPrompt = "You are a legal document analysis expert. " +
	"Extract structured information from contracts accurately."

func buildPrompt(text string) string {
	if len(text) > promptCharBudget {
		text = text[:promptCharBudget]
	}
	return fmt.Sprintf(`Extract the following fields from this contract. Return valid JSON only.

Contract text:
%s

Extract these fields (set to null if not found):
- parties: array of party names (organizations/individuals)
- effective_date: date when contract becomes effective
- term: contract duration/term length
- governing_law: jurisdiction/governing law
- payment_terms: payment conditions and schedule
- termination: termination conditions
- auto_renewal: auto-renewal clause details
- confidentiality: confidentiality provisions
- indemnity: indemnification provisions
- liability_cap_amount: liability cap amount (number only)
- liability_cap_currency: currency for liability cap (USD, EUR, etc.)
- signatories: array of objects with "name" and "title" fields

Return JSON in this exact format:
{
  "parties": ["Party A", "Party B"],
  "effective_date": "date string or null",
  "term": "term description or null",
  "governing_law": "jurisdiction or null",
  "payment_terms": "terms or null",
  "termination": "conditions or null",
  "auto_renewal": "clause or null",
  "confidentiality": "provisions or null",
  "indemnity": "provisions or null",
  "liability_cap_amount": 100000,
  "liability_cap_currency": "currency or null",
  "signatories": [{"name": "John Doe", "title": "CEO"}]
}`, text)
}
