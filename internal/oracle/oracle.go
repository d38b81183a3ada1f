// Package oracle wraps the language-model PII analysis call and the
// confidence-gated suggestion generator. Analysis faults never escape
// this package: malformed responses and transport failures degrade into
// soft result states so the pipeline always gets a well-formed result.
package oracle

import (
	"context"

	"github.com/ParryPee/EzCensor/constants"
)

// AnalysisStatus distinguishes a genuine analysis from a degraded one,
// so callers never mistake an oracle fault for a clean "no PII".
type AnalysisStatus string

const (
	StatusOK          AnalysisStatus = "ok"
	StatusDegraded    AnalysisStatus = "degraded"    // response malformed, raw fallback kept
	StatusUnreachable AnalysisStatus = "unreachable" // transport failure, diagnostic kept
)

// Finding is one detected sensitive span. Offsets are best-effort and
// may be absent; Text is the authoritative key for positional
// re-matching.
type Finding struct {
	Category   constants.Category `json:"type"`
	Text       string             `json:"text"`
	Confidence float64            `json:"confidence"`
	StartPos   *int               `json:"start_pos,omitempty"`
	EndPos     *int               `json:"end_pos,omitempty"`
}

// AnalysisResult is produced once per extracted text blob.
// Invariant: FoundPII == false implies Findings is empty.
type AnalysisResult struct {
	FoundPII       bool
	Categories     []constants.Category
	Findings       []Finding
	Recommendation string
	Status         AnalysisStatus
	RawFallback    string // unparsed model output when Status == StatusDegraded
	Diagnostic     string // failure detail when Status == StatusUnreachable
}

// Suggestion is a Finding promoted to an actionable redaction
// instruction after threshold filtering.
type Suggestion struct {
	Text        string
	Replacement string
	Category    constants.Category
	Confidence  float64
}

// SuggestionSet bundles the suggestions derived from one analysis.
// NeedsRedaction == (len(Suggestions) > 0).
type SuggestionSet struct {
	NeedsRedaction bool
	Suggestions    []Suggestion
}

// Analyzer is the behavior the pipeline depends on. Implementations
// must not fail: faults are reported through AnalysisResult.Status.
type Analyzer interface {
	Analyze(ctx context.Context, text string) AnalysisResult
}

// Suggest filters findings by confidence threshold and maps each
// surviving category to its fixed replacement literal. Pure: no I/O, no
// mutation of result. Ordering mirrors result.Findings; duplicate
// literals pass through (the applicator handles repeated occurrences).
func Suggest(result AnalysisResult, threshold float64) SuggestionSet {
	if !result.FoundPII {
		return SuggestionSet{}
	}

	var suggestions []Suggestion
	for _, f := range result.Findings {
		if f.Confidence < threshold {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Text:        f.Text,
			Replacement: constants.ReplacementFor(f.Category),
			Category:    f.Category,
			Confidence:  f.Confidence,
		})
	}

	return SuggestionSet{
		NeedsRedaction: len(suggestions) > 0,
		Suggestions:    suggestions,
	}
}
