package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ParryPee/EzCensor/internal/common"
)

// Fragment is one recognized line of text with its bounding box and a
// confidence in 0..1. Boxes are in pixel coordinates of the source image.
type Fragment struct {
	Text       string
	Confidence float32
	Box        image.Rectangle
}

// Config configures the OCR engine and the external binaries it drives.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftotext string // if empty -> "pdftotext"
	Pdftoppm  string // if empty -> "pdftoppm"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for PDF pages, default 300
	MaxPages      int    // 0 = no limit
	TessdataDir   string
}

// Engine is a long-lived OCR handle. It memoizes fragment sets per
// artifact so extraction and redaction share exactly one OCR pass per
// image (keyed by path, size and mtime). Safe for concurrent use.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string][]Fragment
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger, cache: make(map[string][]Fragment)}
}

// Fragments runs tesseract over an image file and returns its line
// fragments. Results are memoized; a second call for the same artifact
// hits the cache instead of a fresh OCR pass.
func (e *Engine) Fragments(ctx context.Context, path string) ([]Fragment, error) {
	key, err := cacheKey(path)
	if err != nil {
		return nil, common.WrapError(err, "stat image")
	}

	e.mu.Lock()
	if frags, ok := e.cache[key]; ok {
		e.mu.Unlock()
		e.logger.Debug("ocr.fragments.cache_hit", "path", path, "fragments", len(frags))
		return frags, nil
	}
	e.mu.Unlock()

	if _, err := e.runner.LookPath(e.cfg.Tesseract); err != nil {
		return nil, common.NewAppError("OCR_UNAVAILABLE", "tesseract not found", common.ErrCapabilityUnavailable)
	}

	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract TSV: %w (%s)", err, truncate(string(errb), 512))
	}

	frags := parseTSV(string(out))
	e.logger.Debug("ocr.fragments.ok", "path", path, "fragments", len(frags))

	e.mu.Lock()
	e.cache[key] = frags
	e.mu.Unlock()
	return frags, nil
}

// Forget drops the memoized fragments for an artifact. Callers use it
// once an artifact's pipeline run is finished. Matching is by path, not
// full cache key, so entries are dropped even when the file was
// rewritten or deleted after the OCR pass.
func (e *Engine) Forget(path string) {
	prefix := path + "|"
	e.mu.Lock()
	for k := range e.cache {
		if strings.HasPrefix(k, prefix) {
			delete(e.cache, k)
		}
	}
	e.mu.Unlock()
}

func cacheKey(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d", path, st.Size(), st.ModTime().UnixNano()), nil
}
