// Package e2e provides end-to-end tests over a corpus of synthetic contracts.
package e2e

import "fmt"

// ContractDoc is one synthetic contract with its known risk profile.
// Signature is a sentence unique to this contract across the corpus, used as
// an exact-match question so retrieval tests can assert the right source.
type ContractDoc struct {
	Filename      string
	Content       string
	Signature     string
	ExpectedRisks []string
}

// Corpus holds the contracts and derived counts.
type Corpus struct {
	Contracts      []ContractDoc
	TotalContracts int
}

// BuildCorpus returns a corpus of contracts covering every audit rule family
// plus clean contracts that must produce no findings for those families.
func BuildCorpus() *Corpus {
	contracts := buildContracts()
	return &Corpus{
		Contracts:      contracts,
		TotalContracts: len(contracts),
	}
}

func buildContracts() []ContractDoc {
	templates := []struct {
		name          string
		clause        string
		signature     string
		expectedRisks []string
	}{
		{
			name:          "short-renewal",
			clause:        "This Agreement shall automatically renew for successive one-year terms unless either party gives written notice of non-renewal at least 10 days prior to the end of the then-current term.",
			signature:     "The renewal mechanics of this engagement were reviewed by the Osaka procurement office.",
			expectedRisks: []string{"auto_renewal_short_notice"},
		},
		{
			name:          "unclear-renewal",
			clause:        "This Agreement shall automatically renew for successive terms unless either party elects otherwise in writing.",
			signature:     "Renewal elections under this engagement are tracked in the vendor registry maintained by finance.",
			expectedRisks: []string{"auto_renewal_unclear_notice"},
		},
		{
			name:          "unlimited-liability",
			clause:        "The Supplier's liability under this Agreement shall be unlimited and not subject to any cap.",
			signature:     "Exposure under this engagement was escalated to the risk committee in March.",
			expectedRisks: []string{"unlimited_liability"},
		},
		{
			name:          "no-cap",
			clause:        "The Vendor's liability for damages arising out of its breach of this Agreement shall be determined in accordance with applicable law.",
			signature:     "Damages under this engagement are settled quarterly through the shared billing platform.",
			expectedRisks: []string{"no_liability_cap"},
		},
		{
			name:          "broad-indemnity",
			clause:        "The Vendor shall indemnify, defend, and hold harmless the Customer from and against any and all claims, losses, and expenses arising out of this Agreement.",
			signature:     "Indemnification notices for this engagement go to the legal operations mailbox.",
			expectedRisks: []string{"broad_indemnity"},
		},
		{
			name:          "unilateral-termination",
			clause:        "The Customer may terminate this Agreement at any time for convenience upon written notice to the Vendor.",
			signature:     "Termination workflows for this engagement run through the contract lifecycle tool.",
			expectedRisks: []string{"unilateral_termination"},
		},
		{
			name:          "assignment-restriction",
			clause:        "The Vendor may not assign this Agreement without the prior written consent of the Customer.",
			signature:     "Assignment requests under this engagement require a change-control ticket.",
			expectedRisks: []string{"assignment_restriction"},
		},
		{
			name:          "perpetual-confidentiality",
			clause:        "The confidentiality obligations in this Section shall survive termination of this Agreement in perpetuity.",
			signature:     "Confidential materials for this engagement are stored in the restricted data room.",
			expectedRisks: []string{"perpetual_confidentiality"},
		},
		{
			name:          "clean-capped",
			clause:        "Each party's aggregate liability under this Agreement shall be capped at $1,000,000. Either party may terminate for material breach upon 60 days written notice.",
			signature:     "This engagement follows the standard commercial playbook without deviations.",
			expectedRisks: nil,
		},
	}

	contracts := make([]ContractDoc, 0, len(templates))
	for i, tpl := range templates {
		content := fmt.Sprintf(
			"MASTER SERVICES AGREEMENT NO. %d\n\n"+
				"This Agreement is entered into as of January %d, 2024 between Acme Corporation and Vendor %d LLC. "+
				"This Agreement is governed by the laws of Delaware.\n\n"+
				"%s\n\n%s\n",
			i+1, i+1, i+1, tpl.clause, tpl.signature)
		contracts = append(contracts, ContractDoc{
			Filename:      fmt.Sprintf("%02d-%s.txt", i+1, tpl.name),
			Content:       content,
			Signature:     tpl.signature,
			ExpectedRisks: tpl.expectedRisks,
		})
	}
	return contracts
}
