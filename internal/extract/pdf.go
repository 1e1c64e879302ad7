package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfTextLayer extracts the embedded text layer of a PDF, concatenating
// per-page text. The library panics on some malformed files, so every
// library call is panic-guarded; a panic is reported as an open failure so
// the fallback chain can take over.
func pdfTextLayer(data []byte) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("pdf text extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, item := range page.Content().Text {
			b.WriteString(item.S)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String()), nil
}
