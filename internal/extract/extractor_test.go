package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconflow/invoice-recon-service/internal/ocr"
)

func TestSniffKind(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Kind
	}{
		{"pdf magic", []byte("%PDF-1.7 rest of file"), KindPDF},
		{"zip magic", []byte("PK\x03\x04 docx payload"), KindDocx},
		{"comma in head", []byte("CP_Name,PAN,GSTIN\nApex,AABCS1234F,"), KindCSV},
		{"plain text", []byte("Invoice without any delimiter here"), KindText},
		{"empty", nil, KindText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SniffKind(tc.data))
		})
	}
}

func TestSniffKindCommaBeyondHeadIsText(t *testing.T) {
	data := append([]byte(strings.Repeat("a", 200)), []byte(",b,c")...)
	assert.Equal(t, KindText, SniffKind(data))
}

func TestKindExtension(t *testing.T) {
	assert.Equal(t, ".pdf", KindPDF.Extension())
	assert.Equal(t, ".docx", KindDocx.Extension())
	assert.Equal(t, ".csv", KindCSV.Extension())
	assert.Equal(t, ".txt", KindText.Extension())
}

func TestIsScanned(t *testing.T) {
	e := New(nil, 10)

	assert.True(t, e.IsScanned(""))
	assert.True(t, e.IsScanned("   \n\t  "))
	assert.True(t, e.IsScanned("abc"))
	assert.True(t, e.IsScanned("  123456789  ")) // 9 chars trimmed
	assert.False(t, e.IsScanned("1234567890"))
	assert.False(t, e.IsScanned("a real text layer with plenty of characters"))
}

// buildDocx assembles a minimal docx container holding the given
// word/document.xml content.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeTemp(t, "note.txt", []byte("  Total Invoice Amount: 23,293.2  \n"))

	text, method, err := New(nil, 0).Extract(context.Background(), path, KindText)
	require.NoError(t, err)
	assert.Equal(t, MethodPlainText, method)
	assert.Equal(t, "Total Invoice Amount: 23,293.2", text)
}

func TestExtractPlainTextDropsInvalidUTF8(t *testing.T) {
	path := writeTemp(t, "note.csv", []byte("amount,\xff\xfe19740"))

	text, method, err := New(nil, 0).Extract(context.Background(), path, KindCSV)
	require.NoError(t, err)
	assert.Equal(t, MethodPlainText, method)
	assert.Equal(t, "amount,19740", text)
}

func TestExtractDocx(t *testing.T) {
	docXML := `<?xml version="1.0"?><w:document><w:body>` +
		`<w:p><w:r><w:t>Channel Partner (Bill From): Apex &amp; Co</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>PAN: AABCS1234F</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	path := writeTemp(t, "invoice.docx", buildDocx(t, docXML))

	text, method, err := New(nil, 0).Extract(context.Background(), path, KindDocx)
	require.NoError(t, err)
	assert.Equal(t, MethodDocx, method)
	assert.Equal(t, "Channel Partner (Bill From): Apex & Co\nPAN: AABCS1234F", text)
}

func TestExtractDocxCorruptContainer(t *testing.T) {
	path := writeTemp(t, "broken.docx", []byte("PK\x03\x04 not actually a zip"))

	_, _, err := New(nil, 0).Extract(context.Background(), path, KindDocx)
	assert.Error(t, err)
}

func TestExtractCorruptPDFFallsBackToRawText(t *testing.T) {
	raw := "%PDF-1.4 garbage but still has Total Invoice Amount: 23,293.2"
	path := writeTemp(t, "broken.pdf", []byte(raw))

	text, method, err := New(nil, 0).Extract(context.Background(), path, KindPDF)
	require.NoError(t, err)
	assert.Equal(t, MethodCorruptFallback, method)
	assert.Contains(t, text, "Total Invoice Amount: 23,293.2")
}

func TestExtractScannedPDFEscalatesToOCR(t *testing.T) {
	// Stub the text layer to return a 3-character result, which must
	// trigger the OCR escalation before field extraction ever runs.
	orig := pdfText
	pdfText = func([]byte) (string, error) { return "i1I", nil }
	t.Cleanup(func() { pdfText = orig })

	engine := ocr.NewEngine(ocr.Config{}).WithRunner(&fakeOCRToolchain{
		pageTexts: []string{"PAN: AABCS1234F", "Total Invoice Amount: 23,293.2"},
	})
	path := writeTemp(t, "scan.pdf", []byte("%PDF-1.4 scanned"))

	text, method, err := New(engine, 10).Extract(context.Background(), path, KindPDF)
	require.NoError(t, err)
	assert.Equal(t, MethodTextLayerOCR, method)
	// Page order must be preserved
	assert.Equal(t, "PAN: AABCS1234F\nTotal Invoice Amount: 23,293.2", text)
}

func TestExtractUsableTextLayerSkipsOCR(t *testing.T) {
	orig := pdfText
	pdfText = func([]byte) (string, error) { return "GSTIN: 27AABCS1234F1Z5", nil }
	t.Cleanup(func() { pdfText = orig })

	engine := ocr.NewEngine(ocr.Config{}).WithRunner(&fakeOCRToolchain{
		fail: true, // OCR must never be invoked
	})
	path := writeTemp(t, "digital.pdf", []byte("%PDF-1.4"))

	text, method, err := New(engine, 10).Extract(context.Background(), path, KindPDF)
	require.NoError(t, err)
	assert.Equal(t, MethodTextLayer, method)
	assert.Equal(t, "GSTIN: 27AABCS1234F1Z5", text)
}

func TestExtractOCRFailureFallsBackToRawText(t *testing.T) {
	orig := pdfText
	pdfText = func([]byte) (string, error) { return "", nil }
	t.Cleanup(func() { pdfText = orig })

	engine := ocr.NewEngine(ocr.Config{}).WithRunner(&fakeOCRToolchain{fail: true})
	path := writeTemp(t, "scan.pdf", []byte("%PDF-1.4 raw bytes win"))

	text, method, err := New(engine, 10).Extract(context.Background(), path, KindPDF)
	require.NoError(t, err)
	assert.Equal(t, MethodCorruptFallback, method)
	assert.Contains(t, text, "raw bytes win")
}

// fakeOCRToolchain stands in for pdftoppm and tesseract. pdftoppm calls
// create one PNG per configured page; tesseract calls return that page's
// text.
type fakeOCRToolchain struct {
	pageTexts []string
	fail      bool
}

func (f *fakeOCRToolchain) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	if f.fail {
		return nil, []byte("stub failure"), fmt.Errorf("%s failed", name)
	}
	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := range f.pageTexts {
			page := fmt.Sprintf("%s-%d.png", prefix, i+1)
			if err := os.WriteFile(page, []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		img := args[0]
		for i := range f.pageTexts {
			if strings.HasSuffix(img, fmt.Sprintf("-%d.png", i+1)) {
				return []byte(f.pageTexts[i] + "\n"), nil, nil
			}
		}
		return nil, nil, fmt.Errorf("unexpected image %s", img)
	default:
		return nil, nil, fmt.Errorf("unexpected command %s", name)
	}
}
