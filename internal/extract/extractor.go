package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/reconflow/invoice-recon-service/internal/ocr"
)

// Extraction method labels reported to the caller.
const (
	MethodTextLayer       = "text-layer"
	MethodTextLayerOCR    = "text-layer + ocr"
	MethodDocx            = "docx"
	MethodPlainText       = "plain-text"
	MethodCorruptFallback = "fallback (corrupt pdf)"
)

// DefaultScannedTextThreshold is the text length below which a PDF page
// set is considered a pure image scan.
const DefaultScannedTextThreshold = 10

// Extractor turns a submitted document into plain text, choosing among
// the text layer, OCR and raw decoding per document kind. A nil OCR
// engine disables the scanned-document escalation.
type Extractor struct {
	ocr              *ocr.Engine
	scannedThreshold int
}

// New creates an Extractor. scannedThreshold <= 0 selects the default.
func New(ocrEngine *ocr.Engine, scannedThreshold int) *Extractor {
	if scannedThreshold <= 0 {
		scannedThreshold = DefaultScannedTextThreshold
	}
	return &Extractor{ocr: ocrEngine, scannedThreshold: scannedThreshold}
}

// strategy is one way of getting text out of a document. Strategies for a
// kind are tried in order until one yields text; reordering or adding a
// strategy is a data change, not new control flow.
type strategy struct {
	method string
	run    func(ctx context.Context, path string, data []byte) (string, error)
}

// Extract produces best-effort plain text from the document at path and
// reports the method that produced it. It fails only when every strategy
// in the kind's chain fails.
func (e *Extractor) Extract(ctx context.Context, path string, kind Kind) (text, method string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read document: %w", err)
	}

	var lastErr error
	for _, s := range e.strategiesFor(kind) {
		text, err := s.run(ctx, path, data)
		if err != nil {
			log.Printf("[extract] %s failed for %s: %v", s.method, kind, err)
			lastErr = err
			continue
		}
		return text, s.method, nil
	}
	return "", "", fmt.Errorf("extraction failed for kind %s: %w", kind, lastErr)
}

// strategiesFor returns the fallback chain for a document kind. For PDFs
// the chain is text layer, then OCR, then raw decoding.
func (e *Extractor) strategiesFor(kind Kind) []strategy {
	switch kind {
	case KindPDF:
		chain := []strategy{{MethodTextLayer, e.runTextLayer}}
		if e.ocr != nil {
			chain = append(chain, strategy{MethodTextLayerOCR, e.runOCR})
		}
		return append(chain, strategy{MethodCorruptFallback, runPlainText})
	case KindDocx:
		return []strategy{{MethodDocx, runDocx}}
	default:
		return []strategy{{MethodPlainText, runPlainText}}
	}
}

// pdfText is swappable so tests can exercise the chain without real PDFs.
var pdfText = pdfTextLayer

// runTextLayer extracts the PDF text layer. When the result looks like a
// pure image scan and OCR is available it reports an error so the chain
// escalates to OCR.
func (e *Extractor) runTextLayer(_ context.Context, _ string, data []byte) (string, error) {
	text, err := pdfText(data)
	if err != nil {
		return "", err
	}
	if e.ocr != nil && e.IsScanned(text) {
		return "", fmt.Errorf("text layer too sparse (%d chars), document looks scanned", utf8.RuneCountInString(strings.TrimSpace(text)))
	}
	return text, nil
}

func (e *Extractor) runOCR(ctx context.Context, path string, _ []byte) (string, error) {
	return e.ocr.PDFToText(ctx, path)
}

func runDocx(_ context.Context, _ string, data []byte) (string, error) {
	return docxText(data)
}

// runPlainText decodes the bytes as UTF-8, dropping invalid sequences.
// It cannot fail, which makes it a safe last link in every chain.
func runPlainText(_ context.Context, _ string, data []byte) (string, error) {
	return strings.TrimSpace(strings.ToValidUTF8(string(data), "")), nil
}

// IsScanned reports whether extracted text is too sparse to trust, meaning
// the page set has effectively no embedded text layer. An empty or
// whitespace-only result always qualifies.
func (e *Extractor) IsScanned(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < e.scannedThreshold
}
