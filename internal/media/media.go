// Package media holds the format-specific extraction and redaction
// strategies plus the registry that maps a format tag to its pair.
package media

import (
	"context"
	"image/color"
	"log/slog"
	"sort"

	"github.com/ParryPee/EzCensor/constants"
	"github.com/ParryPee/EzCensor/internal/ocr"
	"github.com/ParryPee/EzCensor/internal/oracle"
)

// ocrConfidenceFloor drops OCR fragments too noisy to trust, both for
// extraction and for redaction matching.
const ocrConfidenceFloor = 0.5

// Extractor produces the text representation of an artifact.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Applicator locates suggestion literals in the original medium and
// overwrites them irreversibly, writing a new artifact at outPath. It
// never mutates the input artifact.
type Applicator interface {
	Apply(ctx context.Context, path string, suggestions []oracle.Suggestion, outPath string) error
}

// Medium is one registered format strategy.
type Medium struct {
	Format     string // constants.TXT | constants.PDF | constants.IMAGE
	Extractor  Extractor
	Applicator Applicator
}

// Registry maps file extensions to media. Pure lookup, no logic.
type Registry struct {
	media map[string]Medium
}

func NewRegistry() *Registry {
	return &Registry{media: make(map[string]Medium)}
}

func (r *Registry) Register(ext string, m Medium) {
	r.media[constants.NormalizeExt(ext)] = m
}

func (r *Registry) Lookup(ext string) (Medium, bool) {
	m, ok := r.media[constants.NormalizeExt(ext)]
	return m, ok
}

func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.media))
	for ext := range r.media {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultRegistry wires the standard extension set to its media, all
// image formats sharing one OCR engine handle so extraction and
// redaction reuse a single OCR pass per artifact.
func DefaultRegistry(engine *ocr.Engine, fill color.Color, logger *slog.Logger) *Registry {
	r := NewRegistry()

	text := NewTextMedium(logger)
	r.Register("txt", Medium{Format: constants.TXT, Extractor: text, Applicator: text})

	pdf := NewPDFMedium(engine, fill, logger)
	r.Register("pdf", Medium{Format: constants.PDF, Extractor: pdf, Applicator: pdf})

	img := NewImageMedium(engine, fill, logger)
	for _, ext := range []string{"jpg", "jpeg", "png", "gif", "bmp"} {
		r.Register(ext, Medium{Format: constants.IMAGE, Extractor: img, Applicator: img})
	}
	return r
}
