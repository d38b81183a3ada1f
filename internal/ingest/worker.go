package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ParryPee/EzCensor/internal/pipeline"
)

// PoolConfig bounds the worker pool draining the inbox.
type PoolConfig struct {
	Workers      int   // concurrent pipeline runs, default 2
	MaxFileBytes int64 // intake size cap, enforced before the pipeline
	OutboxDir    string
}

// Pool consumes discovered files, runs one pipeline per file and moves
// redacted artifacts into the outbox. Runs are independent so the pool
// is bounded only by tolerance for parallel OCR/LLM calls.
type Pool struct {
	cfg    PoolConfig
	proc   *pipeline.Processor
	logger *slog.Logger
}

func NewPool(cfg PoolConfig, proc *pipeline.Processor, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{cfg: cfg, proc: proc, logger: logger}
}

// Run drains events until the channel closes or ctx is cancelled.
func (p *Pool) Run(ctx context.Context, events <-chan string) error {
	if p.cfg.OutboxDir != "" {
		if err := os.MkdirAll(p.cfg.OutboxDir, 0o755); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case path, ok := <-events:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				p.handle(ctx, path)
				return nil
			})
		}
	}
}

func (p *Pool) handle(ctx context.Context, path string) {
	st, err := os.Stat(path)
	if err != nil {
		p.logger.Warn("ingest.handle.stat_failed", "path", path, "error", err)
		return
	}
	if p.cfg.MaxFileBytes > 0 && st.Size() > p.cfg.MaxFileBytes {
		p.logger.Warn("ingest.handle.too_large", "path", path, "bytes", st.Size(), "cap", p.cfg.MaxFileBytes)
		return
	}

	out := p.proc.ProcessFile(ctx, path)
	if !out.Success {
		p.logger.Warn("ingest.handle.failed", "path", path, "message", out.Message)
		return
	}
	if out.OutputPath == "" {
		p.logger.Info("ingest.handle.clean", "path", path, "message", out.Message)
		return
	}

	dest := filepath.Join(p.cfg.OutboxDir, filepath.Base(out.OutputPath))
	if err := moveFile(out.OutputPath, dest); err != nil {
		p.logger.Error("ingest.handle.move_failed", "from", out.OutputPath, "to", dest, "error", err)
		return
	}
	p.logger.Info("ingest.handle.redacted", "path", path, "out", dest, "redactions", out.RedactionCount)
}

// moveFile renames, falling back to copy+remove across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
