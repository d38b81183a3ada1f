package media

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ParryPee/EzCensor/internal/common"
	"github.com/ParryPee/EzCensor/internal/ocr"
	"github.com/ParryPee/EzCensor/internal/oracle"
)

// PDFEngine is the slice of the OCR engine the PDF medium needs.
type PDFEngine interface {
	FragmentSource
	PDFText(ctx context.Context, path string) (string, int, error)
	RasterizePages(ctx context.Context, path, dir string) ([]string, error)
	Forget(path string)
}

// PDFMedium handles paginated documents. Extraction reads the embedded
// text layer; redaction rasterizes pages, blacks out matched regions
// and assembles a fresh PDF, so removed text is gone rather than hidden.
type PDFMedium struct {
	ocr    PDFEngine
	fill   color.Color
	logger *slog.Logger
}

func NewPDFMedium(engine PDFEngine, fill color.Color, logger *slog.Logger) *PDFMedium {
	if fill == nil {
		fill = color.Black
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFMedium{ocr: engine, fill: fill, logger: logger}
}

// Extract returns the whole document text as one blob. Page boundaries
// stay marked with form feeds (ocr.PageSeparator) so position search
// can be scoped per page downstream.
func (m *PDFMedium) Extract(ctx context.Context, path string) (string, error) {
	text, pages, err := m.ocr.PDFText(ctx, path)
	if err != nil {
		return "", err
	}
	m.logger.Info("media.pdf.extract.ok", "path", path, "pages", pages, "chars", len(text))
	return text, nil
}

// Apply redacts page by page: every page is rendered, its OCR line
// fragments are searched for each literal, matched regions get an
// opaque fill, and the page commits in one encode. All pages are then
// assembled into the output document. A literal with zero matches
// anywhere is a soft warning, not a failure.
func (m *PDFMedium) Apply(ctx context.Context, path string, suggestions []oracle.Suggestion, outPath string) error {
	tmpDir, err := os.MkdirTemp("", "ezc-pdf-*")
	if err != nil {
		return common.NewAppError("PDF_TMP", err.Error(), common.ErrApplicationFailure)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			m.logger.Warn("media.pdf.tmp_cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	pages, err := m.ocr.RasterizePages(ctx, path, tmpDir)
	if err != nil {
		return err
	}
	// Page images are gone with tmpDir after this call, so their OCR
	// entries can never be reused; dropping them here keeps the engine
	// cache bounded across runs.
	defer func() {
		for _, page := range pages {
			m.ocr.Forget(page)
		}
	}()

	totalMatches := 0
	for _, page := range pages {
		n, err := m.redactPage(ctx, page, suggestions)
		if err != nil {
			return err
		}
		totalMatches += n
	}
	if totalMatches == 0 {
		m.logger.Warn("media.pdf.apply.no_matches", "path", path, "suggestions", len(suggestions))
	}

	if err := api.ImportImagesFile(pages, outPath, nil, nil); err != nil {
		_ = os.Remove(outPath)
		return common.NewAppError("PDF_ASSEMBLE", err.Error(), common.ErrApplicationFailure)
	}
	m.logger.Info("media.pdf.apply.ok", "path", path, "out", outPath, "pages", len(pages), "regions", totalMatches)
	return nil
}

// redactPage marks every fragment on one page image that matches a
// suggestion literal and commits all marks in a single re-encode.
// A page with zero matches is left untouched.
func (m *PDFMedium) redactPage(ctx context.Context, pagePath string, suggestions []oracle.Suggestion) (int, error) {
	frags, err := m.ocr.Fragments(ctx, pagePath)
	if err != nil {
		return 0, err
	}

	var boxes []image.Rectangle
	for _, s := range suggestions {
		literal := strings.ToLower(strings.TrimSpace(s.Text))
		if literal == "" {
			continue
		}
		for _, f := range frags {
			if f.Confidence > ocrConfidenceFloor && strings.Contains(strings.ToLower(f.Text), literal) {
				boxes = append(boxes, f.Box)
			}
		}
	}
	if len(boxes) == 0 {
		return 0, nil
	}

	src, err := decodeImage(pagePath)
	if err != nil {
		return 0, err
	}
	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
	for _, box := range boxes {
		draw.Draw(canvas, box, image.NewUniform(m.fill), image.Point{}, draw.Src)
	}

	f, err := os.Create(pagePath)
	if err != nil {
		return 0, common.NewAppError("PDF_PAGE_WRITE", err.Error(), common.ErrApplicationFailure)
	}
	defer f.Close()
	if err := png.Encode(f, canvas); err != nil {
		return 0, common.NewAppError("PDF_PAGE_ENCODE", err.Error(), common.ErrApplicationFailure)
	}
	return len(boxes), nil
}

var _ PDFEngine = (*ocr.Engine)(nil)
