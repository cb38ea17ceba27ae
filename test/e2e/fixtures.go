// Package e2e: this file builds minimal binary files for supported contract types.
package e2e

import (
	"archive/zip"
	"bytes"
)

// SupportedFileExtensions is the list of file extensions used in file-based
// tests. Covers plain text (.txt, .md) and OOXML (.docx). PDF is not generated
// here (no minimal PDF with extractable text); .odt/.rtf share the .docx code path.
var SupportedFileExtensions = []string{".txt", ".md", ".docx"}

// WriteMinimalFile returns the bytes of a minimal file of the given extension
// containing the given text. For plain types the content is the raw text; for
// .docx it is a minimal OOXML archive.
func WriteMinimalFile(ext, text string) ([]byte, error) {
	switch ext {
	case ".docx":
		return minimalDocx(text), nil
	default:
		return []byte(text), nil
	}
}

func minimalDocx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}
