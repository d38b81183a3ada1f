package media

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ParryPee/EzCensor/constants"
	"github.com/ParryPee/EzCensor/internal/ocr"
	"github.com/ParryPee/EzCensor/internal/oracle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFragmentSource struct {
	frags []ocr.Fragment
	err   error
	calls int
}

func (f *fakeFragmentSource) Fragments(ctx context.Context, path string) ([]ocr.Fragment, error) {
	f.calls++
	return f.frags, f.err
}

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	p := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestImageExtractJoinsConfidentFragments(t *testing.T) {
	src := &fakeFragmentSource{frags: []ocr.Fragment{
		{Text: "John Doe", Confidence: 0.92, Box: image.Rect(0, 0, 10, 10)},
		{Text: "noise", Confidence: 0.3, Box: image.Rect(0, 20, 10, 30)},
		{Text: "john@example.com", Confidence: 0.88, Box: image.Rect(0, 40, 10, 50)},
	}}
	m := NewImageMedium(src, color.Black, testLogger())

	got, err := m.Extract(context.Background(), "whatever.png")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "John Doe john@example.com"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestImageExtractEmptyWithoutError(t *testing.T) {
	m := NewImageMedium(&fakeFragmentSource{}, color.Black, testLogger())
	got, err := m.Extract(context.Background(), "blank.png")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestImageApplyFillsMatchedBoxes(t *testing.T) {
	box := image.Rect(2, 2, 8, 8)
	src := &fakeFragmentSource{frags: []ocr.Fragment{
		{Text: "John Doe", Confidence: 0.9, Box: box},
		{Text: "keep me", Confidence: 0.9, Box: image.Rect(12, 12, 18, 18)},
	}}
	m := NewImageMedium(src, color.Black, testLogger())

	in := writeTestPNG(t, 20, 20)
	out := filepath.Join(t.TempDir(), "out.png")
	err := m.Apply(context.Background(), in, []oracle.Suggestion{
		{Text: "john doe", Replacement: "[NAME REDACTED]", Category: constants.Name},
	}, out)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	assertColor := func(x, y int, want color.RGBA) {
		t.Helper()
		r, g, b, _ := img.At(x, y).RGBA()
		wr, wg, wb, _ := want.RGBA()
		if r != wr || g != wg || b != wb {
			t.Fatalf("pixel (%d,%d) = (%d,%d,%d), want %v", x, y, r>>8, g>>8, b>>8, want)
		}
	}
	assertColor(4, 4, color.RGBA{A: 0xff})                          // inside matched box: filled
	assertColor(14, 14, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) // unmatched box: untouched
	assertColor(0, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})   // background: untouched
}

func TestImageApplyLowConfidenceFragmentsIgnored(t *testing.T) {
	src := &fakeFragmentSource{frags: []ocr.Fragment{
		{Text: "John Doe", Confidence: 0.2, Box: image.Rect(2, 2, 8, 8)},
	}}
	m := NewImageMedium(src, color.Black, testLogger())

	in := writeTestPNG(t, 10, 10)
	out := filepath.Join(t.TempDir(), "out.png")
	err := m.Apply(context.Background(), in, []oracle.Suggestion{
		{Text: "John Doe", Replacement: "[NAME REDACTED]", Category: constants.Name},
	}, out)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	f, _ := os.Open(out)
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := img.At(4, 4).RGBA()
	if r != 0xffff {
		t.Fatal("low-confidence fragment must not be redacted")
	}
}

func TestParseFillColor(t *testing.T) {
	if ParseFillColor("white") != color.White {
		t.Fatal("white not mapped")
	}
	if ParseFillColor("") != color.Black {
		t.Fatal("empty should default to black")
	}
	if ParseFillColor("mauve") != color.Black {
		t.Fatal("unknown should fall back to black")
	}
}

func TestDecodeImageUnknownExtension(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.tiff")
	if err := os.WriteFile(p, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := decodeImage(p); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
