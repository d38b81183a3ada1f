package media

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/ParryPee/EzCensor/constants"
	"github.com/ParryPee/EzCensor/internal/common"
	"github.com/ParryPee/EzCensor/internal/ocr"
	"github.com/ParryPee/EzCensor/internal/oracle"
)

// FragmentSource yields the OCR fragments of an image artifact.
// *ocr.Engine satisfies it; tests substitute fakes.
type FragmentSource interface {
	Fragments(ctx context.Context, path string) ([]ocr.Fragment, error)
}

// ImageMedium handles raster images. Extraction and redaction share
// one OCR pass through the fragment source's memoization.
type ImageMedium struct {
	ocr    FragmentSource
	fill   color.Color
	logger *slog.Logger
}

func NewImageMedium(source FragmentSource, fill color.Color, logger *slog.Logger) *ImageMedium {
	if fill == nil {
		fill = color.Black
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageMedium{ocr: source, fill: fill, logger: logger}
}

// Extract OCRs the image and returns the fragments above the
// confidence floor, joined with spaces. An image with no readable text
// yields "" without error.
func (m *ImageMedium) Extract(ctx context.Context, path string) (string, error) {
	frags, err := m.ocr.Fragments(ctx, path)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, f := range frags {
		if f.Confidence > ocrConfidenceFloor {
			parts = append(parts, f.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	m.logger.Info("media.image.extract.ok", "path", path, "fragments", len(frags), "chars", len(text))
	return text, nil
}

// Apply draws an opaque rectangle over the axis-aligned extent of every
// OCR fragment whose text contains a suggestion literal
// (case-insensitive), then writes a new image in the source format.
func (m *ImageMedium) Apply(ctx context.Context, path string, suggestions []oracle.Suggestion, outPath string) error {
	frags, err := m.ocr.Fragments(ctx, path)
	if err != nil {
		return err
	}

	src, err := decodeImage(path)
	if err != nil {
		return err
	}

	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)

	redacted := 0
	for _, s := range suggestions {
		literal := strings.ToLower(strings.TrimSpace(s.Text))
		if literal == "" {
			continue
		}
		for _, f := range frags {
			if f.Confidence > ocrConfidenceFloor && strings.Contains(strings.ToLower(f.Text), literal) {
				draw.Draw(canvas, f.Box, image.NewUniform(m.fill), image.Point{}, draw.Src)
				redacted++
			}
		}
	}

	if err := encodeImage(canvas, outPath); err != nil {
		return err
	}
	m.logger.Info("media.image.apply.ok", "path", path, "out", outPath, "regions", redacted)
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewAppError("IMAGE_READ", err.Error(), common.ErrUnreadableContent)
	}
	defer f.Close()

	var img image.Image
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "png":
		img, err = png.Decode(f)
	case "jpg", "jpeg":
		img, err = jpeg.Decode(f)
	case "gif":
		img, err = gif.Decode(f)
	case "bmp":
		img, err = bmp.Decode(f)
	default:
		return nil, common.NewAppError("IMAGE_FORMAT", fmt.Sprintf("no decoder for %q", filepath.Ext(path)), common.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, common.NewAppError("IMAGE_DECODE", err.Error(), common.ErrUnreadableContent)
	}
	return img, nil
}

func encodeImage(img image.Image, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return common.NewAppError("IMAGE_WRITE", err.Error(), common.ErrApplicationFailure)
	}
	defer f.Close()

	switch constants.NormalizeExt(filepath.Ext(outPath)) {
	case "png":
		err = png.Encode(f, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(f, img, nil)
	case "bmp":
		err = bmp.Encode(f, img)
	default:
		return common.NewAppError("IMAGE_FORMAT", fmt.Sprintf("no encoder for %q", filepath.Ext(outPath)), common.ErrUnsupportedFormat)
	}
	if err != nil {
		return common.NewAppError("IMAGE_ENCODE", err.Error(), common.ErrApplicationFailure)
	}
	return nil
}

// ParseFillColor maps a configured color name to a concrete color.
// Unknown names fall back to black.
func ParseFillColor(name string) color.Color {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "black":
		return color.Black
	case "white":
		return color.White
	case "red":
		return color.RGBA{R: 0xff, A: 0xff}
	case "green":
		return color.RGBA{G: 0xff, A: 0xff}
	case "blue":
		return color.RGBA{B: 0xff, A: 0xff}
	default:
		return color.Black
	}
}
