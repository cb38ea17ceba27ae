package extract

import (
	"fmt"

	"github.com/lu4p/cat"
)

// extractDOCX extracts text from DOCX, ODT, and RTF contracts. These formats
// have no stable page boundaries, so the whole text maps to a single page span.
func extractDOCX(content []byte) (*Extracted, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return nil, fmt.Errorf("extract document text: %w", err)
	}
	return singlePage(cleanText(text)), nil
}
