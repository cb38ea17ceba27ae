package extract

import (
	"fmt"
	"unicode/utf8"
)

func extractPlain(content []byte) (*Extracted, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("file is not valid UTF-8 text")
	}
	return singlePage(cleanText(string(content))), nil
}
