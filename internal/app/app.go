// Package app wires the process-wide context object: one oracle
// client, one OCR engine handle and one registry, constructed at start
// and passed into pipeline runs. No global mutable state.
package app

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/ParryPee/EzCensor/internal/common"
	"github.com/ParryPee/EzCensor/internal/export"
	"github.com/ParryPee/EzCensor/internal/media"
	"github.com/ParryPee/EzCensor/internal/ocr"
	"github.com/ParryPee/EzCensor/internal/oracle"
	"github.com/ParryPee/EzCensor/internal/pipeline"
	"github.com/ParryPee/EzCensor/internal/repository"
)

type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Engine    *ocr.Engine
	Registry  *media.Registry
	Processor *pipeline.Processor
	Runs      repository.RunRepository
	Export    *export.Service

	db *sql.DB
}

// New builds the full dependency graph from a validated config.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := repository.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, common.WrapError(err, "open run store")
	}
	runs := repository.NewRunRepository(db, logger)

	engine := ocr.NewEngine(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	registry := media.DefaultRegistry(engine, media.ParseFillColor(cfg.Redaction.FillColor), logger)

	analyzer := oracle.NewClient(oracle.Config{
		BaseURL:     cfg.Oracle.BaseURL,
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
		TopP:        cfg.Oracle.TopP,
		Timeout:     cfg.Oracle.Timeout,
	}, logger)

	proc := pipeline.NewProcessor(registry, analyzer, runs, engine, cfg.Redaction.ConfidenceThreshold, cfg.Files.TempDir, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Engine:    engine,
		Registry:  registry,
		Processor: proc,
		Runs:      runs,
		Export:    export.NewService(runs, logger),
		db:        db,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// AllowedExts returns the configured extension set in the shape the
// watcher expects.
func (a *App) AllowedExts() map[string]struct{} {
	exts := make(map[string]struct{}, len(a.Config.Files.SupportedFormats))
	for _, f := range a.Config.Files.SupportedFormats {
		exts[f] = struct{}{}
	}
	return exts
}
