package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ParryPee/EzCensor/internal/common"
)

// PageSeparator is the page-boundary marker in extracted PDF text.
// pdftotext emits a form feed between pages; downstream position search
// scopes matches per page by splitting on it.
const PageSeparator = "\f"

// PDFText extracts per-page text from a PDF via pdftotext. The returned
// blob keeps form-feed page separators; pages is the page count.
func (e *Engine) PDFText(ctx context.Context, path string) (text string, pages int, err error) {
	if _, err := e.runner.LookPath(e.cfg.Pdftotext); err != nil {
		return "", 0, common.NewAppError("PDF_UNAVAILABLE", "pdftotext not found", common.ErrCapabilityUnavailable)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, common.NewAppError("PDF_PARSE", truncate(string(errb), 512), common.ErrUnreadableContent)
	}
	// normalize per page; joining afterwards keeps the separators intact
	raw := strings.Split(string(out), PageSeparator)
	for i := range raw {
		raw[i] = Normalize(raw[i])
	}
	text = strings.Join(raw, PageSeparator)
	pages = len(raw)
	return text, pages, nil
}

// RasterizePages renders each PDF page to a PNG under dir and returns
// the page image paths in page order.
func (e *Engine) RasterizePages(ctx context.Context, path, dir string) ([]string, error) {
	if _, err := e.runner.LookPath(e.cfg.Pdftoppm); err != nil {
		return nil, common.NewAppError("PDF_UNAVAILABLE", "pdftoppm not found", common.ErrCapabilityUnavailable)
	}

	prefix := filepath.Join(dir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <dir/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, common.NewAppError("PDF_RASTER", truncate(string(errb), 512), common.ErrUnreadableContent)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, common.NewAppError("PDF_RASTER", "pdftoppm produced no pages", common.ErrUnreadableContent)
	}
	return matches, nil
}
