package media

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ParryPee/EzCensor/internal/common"
	"github.com/ParryPee/EzCensor/internal/oracle"
)

// TextMedium handles plain text files. Redaction replaces every
// case-sensitive occurrence of each suggestion literal.
type TextMedium struct {
	logger *slog.Logger
}

func NewTextMedium(logger *slog.Logger) *TextMedium {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextMedium{logger: logger}
}

func (t *TextMedium) Extract(ctx context.Context, path string) (string, error) {
	content, err := t.readDecoded(path)
	if err != nil {
		return "", err
	}
	t.logger.Info("media.text.extract.ok", "path", path, "chars", len(content))
	return content, nil
}

// readDecoded reads the file as UTF-8, falling back to a byte-level
// Latin-1 decode when the bytes are not valid UTF-8.
func (t *TextMedium) readDecoded(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", common.NewAppError("TEXT_READ", err.Error(), common.ErrUnreadableContent)
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	t.logger.Warn("media.text.extract.latin1_fallback", "path", path)
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes), nil
}

// Apply redacts against immutable span offsets computed once against
// the original text, then materializes the output in a single pass.
// Overlapping spans merge by union; the earliest span's replacement
// wins for the merged region.
func (t *TextMedium) Apply(ctx context.Context, path string, suggestions []oracle.Suggestion, outPath string) error {
	content, err := t.readDecoded(path)
	if err != nil {
		return err
	}

	spans := findSpans(content, suggestions)
	redacted := redactSpans(content, spans)

	if err := os.WriteFile(outPath, []byte(redacted), 0o644); err != nil {
		return common.NewAppError("TEXT_WRITE", err.Error(), common.ErrApplicationFailure)
	}
	t.logger.Info("media.text.apply.ok", "path", path, "out", outPath, "spans", len(spans))
	return nil
}

type span struct {
	start, end int
	repl       string
	ord        int // suggestion order, for deterministic merges
}

// findSpans locates every occurrence of each suggestion literal in the
// original text. Case-sensitive, all occurrences.
func findSpans(content string, suggestions []oracle.Suggestion) []span {
	var spans []span
	for ord, s := range suggestions {
		literal := s.Text
		if literal == "" {
			continue
		}
		from := 0
		for {
			i := strings.Index(content[from:], literal)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, span{start: start, end: start + len(literal), repl: s.Replacement, ord: ord})
			from = start + len(literal)
		}
	}
	return spans
}

// redactSpans materializes the redacted text in one pass over spans
// sorted by position. Overlaps coalesce into one redacted area.
func redactSpans(content string, spans []span) string {
	if len(spans) == 0 {
		return content
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].ord < spans[j].ord
	})

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start < last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(content[prev:s.start])
		b.WriteString(s.repl)
		prev = s.end
	}
	b.WriteString(content[prev:])
	return b.String()
}
