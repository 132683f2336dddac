package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfText extracts page-labeled text from a PDF and reports the page
// total. Pages that fail to parse are skipped so a single bad page
// does not lose the document.
func pdfText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	pageCount := reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Page %d:\n%s", i, text)
	}

	if b.Len() == 0 {
		return "", 0, ErrEmptyDocument
	}
	return b.String(), pageCount, nil
}
