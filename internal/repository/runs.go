package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ParryPee/EzCensor/constants"
)

// Run is one recorded pipeline run.
type Run struct {
	ID             string
	SourcePath     string
	Format         string
	Status         constants.RunStatus
	PIIFound       bool
	Categories     string // comma-joined detected categories
	RedactionCount int
	AnalysisStatus string
	Message        string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// RunResult carries the terminal fields written by Finish.
type RunResult struct {
	Status         constants.RunStatus
	PIIFound       bool
	Categories     string
	RedactionCount int
	AnalysisStatus string
	Message        string
}

// RunRepository is the audit trail the pipeline writes to. The trail is
// the human-review channel for degraded analyses, so rows must survive
// even when a run fails.
type RunRepository interface {
	Start(ctx context.Context, runID, sourcePath, format string) error
	Finish(ctx context.Context, runID string, res RunResult) error
	List(ctx context.Context, from, to *time.Time) ([]Run, error)
}

type runRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRunRepository(db *sql.DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, runID, sourcePath, format string) error {
	if !validFormat(format) {
		return fmt.Errorf("unknown format tag %q", format)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pipeline_run (id, source_path, format, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, sourcePath, format, string(constants.RunStatusRunning), time.Now().UTC(),
	)
	if err != nil {
		r.log.Error("pipeline_run start failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("pipeline_run started", "run_id", runID, "path", sourcePath, "format", format)
	return nil
}

func (r *runRepo) Finish(ctx context.Context, runID string, res RunResult) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pipeline_run
		 SET status = ?, pii_found = ?, categories = ?, redaction_count = ?, analysis_status = ?, message = ?, finished_at = ?
		 WHERE id = ?`,
		string(res.Status), boolToInt(res.PIIFound), res.Categories, res.RedactionCount, res.AnalysisStatus, res.Message, time.Now().UTC(), runID,
	)
	if err != nil {
		r.log.Error("pipeline_run finish failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("pipeline_run finished", "run_id", runID, "status", res.Status, "redactions", res.RedactionCount)
	return nil
}

func (r *runRepo) List(ctx context.Context, from, to *time.Time) ([]Run, error) {
	q := `SELECT id, source_path, format, status, pii_found, categories, redaction_count, analysis_status, message, started_at, finished_at
	      FROM pipeline_run`
	var args []any
	var conds []string
	if from != nil {
		conds = append(conds, "started_at >= ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		conds = append(conds, "started_at <= ?")
		args = append(args, to.UTC())
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY started_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var piiFound int
		var status string
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.SourcePath, &run.Format, &status, &piiFound, &run.Categories,
			&run.RedactionCount, &run.AnalysisStatus, &run.Message, &run.StartedAt, &finished); err != nil {
			return nil, err
		}
		run.Status = constants.RunStatus(status)
		run.PIIFound = piiFound != 0
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// validFormat keeps the format column to the known media tags.
func validFormat(format string) bool {
	for _, t := range constants.FileTypes {
		if format == t {
			return true
		}
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
