package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	paragraphEnd = regexp.MustCompile(`(?i)</w:p>`)
	xmlTag       = regexp.MustCompile(`<[^>]*>`)
	docxEntities = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

// docxText opens a docx (zip) container and extracts the paragraph texts
// of word/document.xml, joined with line breaks.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx container: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}

		paragraphs := paragraphEnd.Split(string(content), -1)
		var lines []string
		for _, p := range paragraphs {
			text := strings.TrimSpace(xmlTag.ReplaceAllString(p, " "))
			if text != "" {
				lines = append(lines, docxEntities.Replace(text))
			}
		}
		return strings.TrimSpace(strings.Join(lines, "\n")), nil
	}

	return "", fmt.Errorf("docx container has no word/document.xml")
}
