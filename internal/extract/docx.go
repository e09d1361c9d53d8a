package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/lu4p/cat"
)

// wtTag matches <w:t> text nodes with or without attributes, so runs like
// <w:t xml:space="preserve"> are captured too.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCX extracts text from .docx bytes. DOCX is a zip whose main body
// lives in word/document.xml (rarely word/document2.xml and similar). Text is
// collected from every <w:t> node so content survives regardless of paragraph
// and run attributes.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	var b strings.Builder
	found := false
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/document") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("extract DOCX: open %s: %w", f.Name, err)
		}
		docXML, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		found = true
		for _, m := range wtTag.FindAllSubmatch(docXML, -1) {
			text := strings.TrimSpace(string(m[1]))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
	if !found {
		return "", fmt.Errorf("extract DOCX: no document body found")
	}
	return b.String(), nil
}

// extractOffice handles .odt and .rtf through the cat converter, which
// dispatches on the file's magic bytes.
func extractOffice(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	return strings.TrimSpace(text), nil
}
