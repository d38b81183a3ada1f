package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ParryPee/EzCensor/constants"
)

func testRepo(t *testing.T) RunRepository {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRunRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Start(ctx, "run-1", "/in/contact.txt", constants.TXT); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := repo.Finish(ctx, "run-1", RunResult{
		Status:         constants.RunStatusDone,
		PIIFound:       true,
		Categories:     "name,email",
		RedactionCount: 2,
		AnalysisStatus: "ok",
		Message:        "Successfully redacted 2 sensitive items",
	})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	runs, err := repo.List(ctx, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.ID != "run-1" || r.SourcePath != "/in/contact.txt" || r.Format != constants.TXT {
		t.Fatalf("unexpected run: %+v", r)
	}
	if r.Status != constants.RunStatusDone || !r.PIIFound || r.RedactionCount != 2 {
		t.Fatalf("terminal fields not recorded: %+v", r)
	}
	if r.Categories != "name,email" {
		t.Fatalf("categories not recorded: %+v", r)
	}
	if r.FinishedAt == nil {
		t.Fatal("finished_at not set")
	}
	if r.StartedAt.IsZero() {
		t.Fatal("started_at not set")
	}
}

func TestRunFailureSurvives(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Start(ctx, "run-2", "/in/scan.png", constants.IMAGE); err != nil {
		t.Fatal(err)
	}
	err := repo.Finish(ctx, "run-2", RunResult{
		Status:         constants.RunStatusFailed,
		AnalysisStatus: "unreachable",
		Message:        "Analysis unavailable - no redaction performed, manual review required",
	})
	if err != nil {
		t.Fatal(err)
	}

	runs, err := repo.List(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != constants.RunStatusFailed {
		t.Fatalf("failed run must stay in the trail: %+v", runs)
	}
	if runs[0].AnalysisStatus != "unreachable" {
		t.Fatalf("analysis status lost: %+v", runs[0])
	}
}

func TestRunListTimeWindow(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Start(ctx, id, "/in/"+id+".txt", constants.TXT); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	runs, err := repo.List(ctx, &past, &future)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("window should include all runs, got %d", len(runs))
	}

	runs, err = repo.List(ctx, &future, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("future-only window should be empty, got %d", len(runs))
	}

	runs, err = repo.List(ctx, nil, &past)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("past-only window should be empty, got %d", len(runs))
	}
}

func TestStartRejectsUnknownFormatTag(t *testing.T) {
	repo := testRepo(t)
	if err := repo.Start(context.Background(), "x", "/in/a.docx", "DOCX"); err == nil {
		t.Fatal("unknown format tag must be rejected")
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Start(ctx, "dup", "/in/a.txt", constants.TXT); err != nil {
		t.Fatal(err)
	}
	if err := repo.Start(ctx, "dup", "/in/b.txt", constants.TXT); err == nil {
		t.Fatal("duplicate primary key must error")
	}
}
