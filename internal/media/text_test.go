package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ParryPee/EzCensor/constants"
	"github.com/ParryPee/EzCensor/internal/oracle"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func applyText(t *testing.T, content string, suggestions []oracle.Suggestion) string {
	t.Helper()
	m := NewTextMedium(testLogger())
	in := writeTemp(t, "in.txt", []byte(content))
	out := filepath.Join(t.TempDir(), "out.txt")
	if err := m.Apply(context.Background(), in, suggestions, out); err != nil {
		t.Fatalf("apply: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestTextApplyRoundTrip(t *testing.T) {
	got := applyText(t, "Contact John Doe at john@example.com", []oracle.Suggestion{
		{Text: "John Doe", Replacement: "[NAME REDACTED]", Category: constants.Name, Confidence: 0.95},
		{Text: "john@example.com", Replacement: "[EMAIL REDACTED]", Category: constants.Email, Confidence: 0.9},
	})
	want := "Contact [NAME REDACTED] at [EMAIL REDACTED]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTextApplyAllOccurrences(t *testing.T) {
	got := applyText(t, "Alice met Alice. Alice left.", []oracle.Suggestion{
		{Text: "Alice", Replacement: "[NAME REDACTED]", Category: constants.Name},
	})
	want := "[NAME REDACTED] met [NAME REDACTED]. [NAME REDACTED] left."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTextApplyCaseSensitive(t *testing.T) {
	got := applyText(t, "alice and Alice", []oracle.Suggestion{
		{Text: "Alice", Replacement: "[NAME REDACTED]", Category: constants.Name},
	})
	want := "alice and [NAME REDACTED]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Overlapping literals merge into one redacted area. The suggestion
// whose span starts earliest supplies the replacement.
func TestTextApplyOverlapUnion(t *testing.T) {
	got := applyText(t, "call 555-0100 ext 7 now", []oracle.Suggestion{
		{Text: "555-0100 ext 7", Replacement: "[PHONE REDACTED]", Category: constants.Phone},
		{Text: "0100 ext", Replacement: "[ID NUMBER REDACTED]", Category: constants.IDNumber},
	})
	want := "call [PHONE REDACTED] now"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTextApplyNoMatchesLeavesContentIntact(t *testing.T) {
	got := applyText(t, "nothing sensitive here", []oracle.Suggestion{
		{Text: "Bob", Replacement: "[NAME REDACTED]", Category: constants.Name},
	})
	if got != "nothing sensitive here" {
		t.Fatalf("content changed unexpectedly: %q", got)
	}
}

func TestTextApplySkipsEmptyLiteral(t *testing.T) {
	got := applyText(t, "abc", []oracle.Suggestion{
		{Text: "", Replacement: "[NAME REDACTED]", Category: constants.Name},
	})
	if got != "abc" {
		t.Fatalf("empty literal must be ignored, got %q", got)
	}
}

func TestTextExtractLatin1Fallback(t *testing.T) {
	// 0xE9 is "é" in Latin-1 but invalid standalone UTF-8
	p := writeTemp(t, "latin1.txt", []byte{'c', 'a', 'f', 0xE9})
	m := NewTextMedium(testLogger())
	got, err := m.Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "café" {
		t.Fatalf("got %q, want %q", got, "café")
	}
}

func TestTextExtractMissingFile(t *testing.T) {
	m := NewTextMedium(testLogger())
	_, err := m.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRedactSpansDeterministicTieBreak(t *testing.T) {
	content := "xx"
	spans := []span{
		{start: 0, end: 2, repl: "B", ord: 1},
		{start: 0, end: 2, repl: "A", ord: 0},
	}
	if got := redactSpans(content, spans); got != "A" {
		t.Fatalf("earliest ord should win at equal start, got %q", got)
	}
}
