package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/reconflow/invoice-recon-service/internal/compare"
	"github.com/reconflow/invoice-recon-service/internal/extract"
	"github.com/reconflow/invoice-recon-service/internal/fields"
	"github.com/reconflow/invoice-recon-service/internal/models"
	"github.com/reconflow/invoice-recon-service/internal/scoring"
	"github.com/reconflow/invoice-recon-service/internal/storage"
)

// Error kinds the transport layer maps to status codes: a bad payload is
// the caller's fault, a failed extraction is not.
var (
	ErrInvalidPayload   = errors.New("invalid document payload")
	ErrExtractionFailed = errors.New("document extraction failed")
)

// Reconciler runs the extraction-and-scoring pipeline for one document.
// It is stateless across requests; all configuration is read-only after
// construction, so a single instance serves concurrent requests.
type Reconciler struct {
	extractor *extract.Extractor
	fields    *fields.Extractor
	engine    *scoring.Engine
	inputDir  string
}

// NewReconciler wires the pipeline stages together. inputDir receives the
// per-request temp copies of submitted documents.
func NewReconciler(extractor *extract.Extractor, fieldExtractor *fields.Extractor, engine *scoring.Engine, inputDir string) (*Reconciler, error) {
	if inputDir == "" {
		inputDir = "input_docs"
	}
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create input dir: %w", err)
	}
	return &Reconciler{
		extractor: extractor,
		fields:    fieldExtractor,
		engine:    engine,
		inputDir:  inputDir,
	}, nil
}

// Process decodes the submitted document, extracts and compares the nine
// fields against the caller's claimed values and scores the result. The
// temp copy of the document is removed on every exit path.
func (s *Reconciler) Process(ctx context.Context, req *models.ReconcileRequest) (*models.ReconcileResponse, error) {
	data, err := DecodeBlob(req.Blob64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	kind := extract.SniffKind(data)
	fileName := "blob_" + strings.ReplaceAll(uuid.NewString(), "-", "") + kind.Extension()
	path := filepath.Join(s.inputDir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Printf("Warning: failed to clean up %s: %v", path, err)
		}
	}()

	// Archive the original document if object storage is configured.
	// Archival is best-effort and never fails the request.
	var archiveURL string
	if storage.Client != nil {
		archiveURL, err = storage.UploadDocument(ctx, req.PartnerID, fileName, data)
		if err != nil {
			log.Printf("Warning: failed to archive document %s: %v", fileName, err)
			archiveURL = ""
		}
	}

	text, method, err := s.extractor.Extract(ctx, path, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	log.Printf("Extracted %d characters from %s via %s", len(text), fileName, method)

	extracted := s.fields.Extract(text)
	comparisons := compare.Fields(req.Expected(), extracted)
	verdict := s.engine.Score(comparisons)

	return &models.ReconcileResponse{
		Comparisons:       comparisons,
		Score:             strconv.Itoa(verdict.Score),
		Remarks:           verdict.Remarks,
		RecommendedAction: verdict.RecommendedAction,
		ExtractionMethod:  method,
		FileName:          fileName,
		ArchiveURL:        archiveURL,
	}, nil
}

// DecodeBlob turns a transport base64 string into document bytes. It
// tolerates data-URL prefixes, whitespace (including MIME line wrapping)
// and missing padding, which front ends routinely produce.
func DecodeBlob(blob string) ([]byte, error) {
	if i := strings.LastIndex(blob, ","); i >= 0 {
		blob = blob[i+1:]
	}
	blob = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, blob)
	if blob == "" {
		return nil, fmt.Errorf("empty base64 payload")
	}
	if pad := len(blob) % 4; pad != 0 {
		blob += strings.Repeat("=", 4-pad)
	}
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 string: %w", err)
	}
	return data, nil
}
