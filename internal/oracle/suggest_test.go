package oracle

import (
	"reflect"
	"testing"

	"github.com/ParryPee/EzCensor/constants"
)

func analysisFixture() AnalysisResult {
	return AnalysisResult{
		FoundPII: true,
		Status:   StatusOK,
		Findings: []Finding{
			{Category: constants.Name, Text: "John Doe", Confidence: 0.95},
			{Category: constants.Email, Text: "john@example.com", Confidence: 0.9},
			{Category: constants.Phone, Text: "555-0100", Confidence: 0.4},
		},
	}
}

func TestSuggestFiltersByThreshold(t *testing.T) {
	set := Suggest(analysisFixture(), 0.8)

	if !set.NeedsRedaction {
		t.Fatal("expected NeedsRedaction")
	}
	if len(set.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(set.Suggestions))
	}
	if set.Suggestions[0].Text != "John Doe" || set.Suggestions[0].Replacement != "[NAME REDACTED]" {
		t.Fatalf("unexpected first suggestion: %+v", set.Suggestions[0])
	}
	if set.Suggestions[1].Text != "john@example.com" || set.Suggestions[1].Replacement != "[EMAIL REDACTED]" {
		t.Fatalf("unexpected second suggestion: %+v", set.Suggestions[1])
	}
}

func TestSuggestIsPure(t *testing.T) {
	res := analysisFixture()
	first := Suggest(res, 0.8)
	second := Suggest(res, 0.8)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("suggest not idempotent: %+v vs %+v", first, second)
	}
}

func TestSuggestThresholdMonotonicity(t *testing.T) {
	res := analysisFixture()
	prev := len(Suggest(res, 0.0).Suggestions)
	for _, th := range []float64{0.2, 0.5, 0.8, 0.91, 1.0} {
		n := len(Suggest(res, th).Suggestions)
		if n > prev {
			t.Fatalf("raising threshold to %v increased suggestions: %d -> %d", th, prev, n)
		}
		prev = n
	}
}

func TestSuggestNoPII(t *testing.T) {
	set := Suggest(AnalysisResult{FoundPII: false}, 0.0)
	if set.NeedsRedaction || len(set.Suggestions) != 0 {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestSuggestAllBelowThreshold(t *testing.T) {
	res := AnalysisResult{
		FoundPII: true,
		Findings: []Finding{{Category: constants.Name, Text: "Jane", Confidence: 0.5}},
	}
	set := Suggest(res, 0.8)
	if set.NeedsRedaction {
		t.Fatal("expected NeedsRedaction=false when all findings are below threshold")
	}
}

func TestSuggestKeepsDuplicatesAndOrder(t *testing.T) {
	res := AnalysisResult{
		FoundPII: true,
		Findings: []Finding{
			{Category: constants.Email, Text: "a@b.com", Confidence: 0.9},
			{Category: constants.Name, Text: "Jane Roe", Confidence: 0.9},
			{Category: constants.Email, Text: "a@b.com", Confidence: 0.85},
		},
	}
	set := Suggest(res, 0.8)
	if len(set.Suggestions) != 3 {
		t.Fatalf("expected duplicates to pass through, got %d suggestions", len(set.Suggestions))
	}
	if set.Suggestions[0].Text != "a@b.com" || set.Suggestions[1].Text != "Jane Roe" || set.Suggestions[2].Text != "a@b.com" {
		t.Fatalf("ordering not preserved: %+v", set.Suggestions)
	}
}

func TestSuggestUnknownCategoryFallback(t *testing.T) {
	res := AnalysisResult{
		FoundPII: true,
		Findings: []Finding{{Category: constants.Unknown, Text: "xyzzy", Confidence: 0.99}},
	}
	set := Suggest(res, 0.8)
	if set.Suggestions[0].Replacement != "[SENSITIVE INFO REDACTED]" {
		t.Fatalf("expected generic fallback replacement, got %q", set.Suggestions[0].Replacement)
	}
}
