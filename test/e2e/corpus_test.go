package e2e

import (
	"strings"
	"testing"
)

func TestBuildCorpus(t *testing.T) {
	corpus := BuildCorpus()
	if corpus.TotalContracts != len(corpus.Contracts) {
		t.Errorf("TotalContracts = %d, have %d", corpus.TotalContracts, len(corpus.Contracts))
	}
	if corpus.TotalContracts < 9 {
		t.Errorf("corpus too small: %d", corpus.TotalContracts)
	}

	filenames := map[string]bool{}
	for _, c := range corpus.Contracts {
		if filenames[c.Filename] {
			t.Errorf("duplicate filename %s", c.Filename)
		}
		filenames[c.Filename] = true

		if !strings.Contains(c.Content, c.Signature) {
			t.Errorf("%s: signature not in content", c.Filename)
		}
		if !strings.Contains(c.Content, "governed by the laws of Delaware") {
			t.Errorf("%s: preamble missing governing law", c.Filename)
		}
	}

	// Signatures are unique across the corpus so retrieval tests can pin
	// a question to exactly one contract.
	for _, c := range corpus.Contracts {
		hits := 0
		for _, other := range corpus.Contracts {
			if strings.Contains(other.Content, c.Signature) {
				hits++
			}
		}
		if hits != 1 {
			t.Errorf("%s: signature appears in %d contracts", c.Filename, hits)
		}
	}
}
