// Package pipeline sequences extraction, PII analysis, suggestion
// generation and redaction application for one submitted file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ParryPee/EzCensor/constants"
	"github.com/ParryPee/EzCensor/internal/common"
	"github.com/ParryPee/EzCensor/internal/media"
	"github.com/ParryPee/EzCensor/internal/oracle"
	"github.com/ParryPee/EzCensor/internal/repository"
)

// Outcome is the terminal value of one pipeline run. OutputPath is set
// iff Success and RedactionCount > 0. The input artifact is never
// mutated; redaction always writes a new artifact.
type Outcome struct {
	Success        bool
	Message        string
	ExtractedText  string
	OutputPath     string
	PIIFound       bool
	Categories     []constants.Category
	RedactionCount int
	AnalysisStatus oracle.AnalysisStatus
}

// OCRCache drops per-artifact OCR state once its run is finished.
// *ocr.Engine satisfies it.
type OCRCache interface {
	Forget(path string)
}

// Processor coordinates one pipeline run per submitted file. Runs are
// independent; a single Processor serves concurrent calls.
type Processor struct {
	registry  *media.Registry
	analyzer  oracle.Analyzer
	runs      repository.RunRepository // optional audit trail, may be nil
	ocrCache  OCRCache                 // optional, may be nil
	threshold float64
	tempDir   string
	logger    *slog.Logger
}

func NewProcessor(registry *media.Registry, analyzer oracle.Analyzer, runs repository.RunRepository, cache OCRCache, threshold float64, tempDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		registry:  registry,
		analyzer:  analyzer,
		runs:      runs,
		ocrCache:  cache,
		threshold: threshold,
		tempDir:   tempDir,
		logger:    logger,
	}
}

// ProcessFile runs the full pipeline for one file. It always returns a
// well-formed Outcome; internal faults surface as Success=false with a
// human-readable message, never as a raw error.
func (p *Processor) ProcessFile(ctx context.Context, path string) Outcome {
	ext := constants.NormalizeExt(filepath.Ext(path))
	medium, ok := p.registry.Lookup(ext)
	if !ok {
		return p.finish(ctx, "", path, ext, Outcome{
			Message: fmt.Sprintf("Unsupported file format: %q", ext),
		})
	}

	runID := uuid.New().String()
	ctx = common.WithRequestID(ctx, runID)
	audited := p.startRun(ctx, runID, path, medium.Format)
	if !audited {
		runID = "" // no trail row to finish
	}

	// EXTRACTING
	text, err := medium.Extractor.Extract(ctx, path)
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "path", path, "error", err)
		return p.finish(ctx, runID, path, ext, Outcome{
			Message: extractFailureMessage(medium.Format, err),
		})
	}
	if strings.TrimSpace(text) == "" {
		// Absence of readable text in an image is a normal outcome,
		// not an error; for text and document media it is a failure.
		if medium.Format == constants.IMAGE {
			return p.finish(ctx, runID, path, ext, Outcome{
				Success: true,
				Message: "No text detected in image",
			})
		}
		return p.finish(ctx, runID, path, ext, Outcome{
			Message: "No text content found in file",
		})
	}

	// ANALYZING: never fails at this level; oracle faults come back
	// as soft result states.
	analysis := p.analyzer.Analyze(ctx, text)
	if !analysis.FoundPII {
		out := Outcome{
			Success:        true,
			Message:        "No sensitive information detected",
			ExtractedText:  text,
			Categories:     analysis.Categories,
			AnalysisStatus: analysis.Status,
		}
		if analysis.Status == oracle.StatusUnreachable {
			out.Message = "Analysis unavailable - no redaction performed, manual review required"
		}
		return p.finish(ctx, runID, path, ext, out)
	}

	// SUGGESTING: pure, synchronous.
	set := oracle.Suggest(analysis, p.threshold)
	if !set.NeedsRedaction {
		out := Outcome{
			Success:        true,
			Message:        "No redactions needed based on confidence threshold",
			ExtractedText:  text,
			PIIFound:       true,
			Categories:     analysis.Categories,
			AnalysisStatus: analysis.Status,
		}
		if analysis.Status == oracle.StatusDegraded {
			out.Message = "Analysis response malformed - manual review recommended"
		}
		return p.finish(ctx, runID, path, ext, out)
	}

	// REDACTING
	outPath, err := p.outputPath(path)
	if err != nil {
		return p.finish(ctx, runID, path, ext, Outcome{
			Message:        "Failed to prepare output location",
			ExtractedText:  text,
			PIIFound:       true,
			Categories:     analysis.Categories,
			AnalysisStatus: analysis.Status,
		})
	}
	if err := medium.Applicator.Apply(ctx, path, set.Suggestions, outPath); err != nil {
		// partial redaction artifacts are never surfaced as success
		_ = os.Remove(outPath)
		p.logger.Error("pipeline.apply.failed", "path", path, "error", err)
		return p.finish(ctx, runID, path, ext, Outcome{
			Message:        applyFailureMessage(medium.Format, err),
			ExtractedText:  text,
			PIIFound:       true,
			Categories:     analysis.Categories,
			AnalysisStatus: analysis.Status,
		})
	}

	return p.finish(ctx, runID, path, ext, Outcome{
		Success:        true,
		Message:        fmt.Sprintf("Successfully redacted %d sensitive items", len(set.Suggestions)),
		ExtractedText:  text,
		OutputPath:     outPath,
		PIIFound:       true,
		Categories:     analysis.Categories,
		RedactionCount: len(set.Suggestions),
		AnalysisStatus: analysis.Status,
	})
}

// outputPath builds a unique, unpredictable location in the temp dir so
// concurrent runs can never collide.
func (p *Processor) outputPath(inputPath string) (string, error) {
	if err := os.MkdirAll(p.tempDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("redacted_%s_%s", uuid.New().String(), filepath.Base(inputPath))
	return filepath.Join(p.tempDir, name), nil
}

func extractFailureMessage(format string, err error) string {
	if errors.Is(err, common.ErrCapabilityUnavailable) {
		return fmt.Sprintf("Processing capability unavailable for %s files", strings.ToLower(format))
	}
	return fmt.Sprintf("Failed to extract text from %s file", strings.ToLower(format))
}

func applyFailureMessage(format string, err error) string {
	if errors.Is(err, common.ErrCapabilityUnavailable) {
		return fmt.Sprintf("Redaction capability unavailable for %s files", strings.ToLower(format))
	}
	return fmt.Sprintf("Failed to apply redactions to %s file", strings.ToLower(format))
}

func (p *Processor) startRun(ctx context.Context, runID, path, format string) bool {
	if p.runs == nil {
		return false
	}
	if err := p.runs.Start(ctx, runID, path, format); err != nil {
		p.logger.Warn("pipeline.run_audit.start_failed", "path", path, "error", err)
		return false
	}
	return true
}

// finish drops cached OCR state for the artifact, records the run
// outcome in the audit trail (when enabled) and returns the outcome
// unchanged.
func (p *Processor) finish(ctx context.Context, runID, path, ext string, out Outcome) Outcome {
	if p.ocrCache != nil {
		p.ocrCache.Forget(path)
	}
	if out.Success {
		p.logger.Info("pipeline.done",
			"path", path,
			"ext", ext,
			"pii_found", out.PIIFound,
			"redactions", out.RedactionCount,
			"analysis_status", out.AnalysisStatus,
		)
	} else {
		p.logger.Warn("pipeline.failed", "path", path, "ext", ext, "message", out.Message)
	}

	if p.runs != nil && runID != "" {
		status := constants.RunStatusDone
		if !out.Success {
			status = constants.RunStatusFailed
		}
		cats := make([]string, len(out.Categories))
		for i, c := range out.Categories {
			cats[i] = string(c)
		}
		rec := repository.RunResult{
			Status:         status,
			PIIFound:       out.PIIFound,
			Categories:     strings.Join(cats, ","),
			RedactionCount: out.RedactionCount,
			AnalysisStatus: string(out.AnalysisStatus),
			Message:        out.Message,
		}
		if err := p.runs.Finish(ctx, runID, rec); err != nil {
			p.logger.Warn("pipeline.run_audit.finish_failed", "run_id", runID, "error", err)
		}
	}
	return out
}
