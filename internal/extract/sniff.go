package extract

import "bytes"

// Kind is the sniffed container format of a submitted document.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDocx Kind = "docx"
	KindCSV  Kind = "csv"
	KindText Kind = "txt"
)

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// SniffKind detects the document kind from its leading bytes: %PDF means
// pdf, a zip signature means docx, a comma within the first 200 bytes is
// the csv heuristic, anything else is treated as plain text.
func SniffKind(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(data, zipMagic):
		return KindDocx
	default:
		head := data
		if len(head) > 200 {
			head = head[:200]
		}
		if bytes.ContainsRune(head, ',') {
			return KindCSV
		}
		return KindText
	}
}

// Extension returns the file extension used for the temp copy.
func (k Kind) Extension() string {
	switch k {
	case KindPDF:
		return ".pdf"
	case KindDocx:
		return ".docx"
	case KindCSV:
		return ".csv"
	default:
		return ".txt"
	}
}
