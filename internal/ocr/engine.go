package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Config holds the knobs for PDF rasterization and recognition.
type Config struct {
	DPI          int    // rasterization DPI, default 300
	Language     string // tesseract language, default "eng"
	MaxPages     int    // 0 = no limit
	TesseractBin string // binary name or absolute path; if empty -> "tesseract"
	PdftoppmBin  string // binary name or absolute path; if empty -> "pdftoppm"

	// Concurrent tesseract processes per document. Page results are
	// independent; output is rejoined in page order.
	Workers int
}

// Engine runs optical character recognition over PDF pages by rendering
// each page to a raster image and feeding it to tesseract.
type Engine struct {
	cfg    Config
	runner Runner
}

// NewEngine creates an OCR engine with defaults filled in.
func NewEngine(cfg Config) *Engine {
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.TesseractBin == "" {
		cfg.TesseractBin = "tesseract"
	}
	if cfg.PdftoppmBin == "" {
		cfg.PdftoppmBin = "pdftoppm"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Engine{cfg: cfg, runner: execRunner{}}
}

// WithRunner replaces the command runner. Tests use this to stub out the
// external binaries.
func (e *Engine) WithRunner(r Runner) *Engine {
	e.runner = r
	return e
}

// PDFToText renders every page of the PDF at the configured DPI and runs
// tesseract on each. Page texts are concatenated with line breaks in
// original page order. The rendered images live in a temp dir removed on
// all exit paths.
func (e *Engine) PDFToText(ctx context.Context, pdfPath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "recon-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.PdftoppmBin, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// pdftoppm pads page numbers, so lexical order is page order
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	texts := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, img := range pages {
		i, img := i, img
		g.Go(func() error {
			txt, err := e.recognize(gctx, img)
			if err != nil {
				return err
			}
			texts[i] = txt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

// recognize runs tesseract on a single page image.
func (e *Engine) recognize(ctx context.Context, imgPath string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.TesseractBin, imgPath, "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	// tesseract terminates its output with a newline; trim it so pages
	// join with a single separator
	return strings.TrimSpace(string(out)), nil
}
