package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lysyi3m/gov-comb/app/feed"
	"github.com/lysyi3m/gov-comb/app/kst"
)

// WriteDigestTask renders the default window digest to <dir>/<today KST>.md.
type WriteDigestTask struct {
	Task
	builder   DigestBuilder
	generator *feed.Generator
	dir       string
}

func NewWriteDigestTask(builder DigestBuilder, dir string) *WriteDigestTask {
	return &WriteDigestTask{
		Task:      NewTask(TaskTypeWriteDigest),
		builder:   builder,
		generator: feed.NewGenerator(),
		dir:       dir,
	}
}

func (t *WriteDigestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	window, err := t.builder.Resolver().Window("", "")
	if err != nil {
		return fmt.Errorf("failed to resolve window: %w", err)
	}

	entries, stats, err := t.builder.Build(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to build digest: %w", err)
	}

	path := filepath.Join(t.dir, kst.FormatYMD(window.End)+".md")
	if err := writeFileAtomic(path, []byte(t.generator.Markdown(entries)+"\n")); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	slog.Info("Task completed",
		"task", &t.Task,
		"path", path,
		"entries", len(entries),
		"collected", stats.Collected,
		"duration", t.Duration())

	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory and renames it
// over path, so readers never see a partial digest.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".digest-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
