// Package watcher polls a source tree for changes and re-runs analysis when
// any file is added, removed, or modified. Polling keeps the behavior uniform
// across platforms and network filesystems.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/scan"
)

const (
	baseInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// AnalyzeFunc is the callback invoked when the tree has changed.
type AnalyzeFunc func(ctx context.Context) error

// Watcher polls one root for file changes.
type Watcher struct {
	root      string
	languages []lang.Language
	ignore    []string
	analyzeFn AnalyzeFunc

	snapshot map[string]fileSnapshot
	interval time.Duration
}

// New creates a Watcher over root. analyzeFn runs once immediately and again
// after every detected change.
func New(root string, languages []lang.Language, ignore []string, analyzeFn AnalyzeFunc) *Watcher {
	return &Watcher{
		root:      root,
		languages: languages,
		ignore:    ignore,
		analyzeFn: analyzeFn,
		interval:  baseInterval,
	}
}

// Run blocks until ctx is cancelled, polling at an adaptive interval that
// grows with tree size.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.analyzeFn(ctx); err != nil {
		return err
	}
	snap, err := w.captureSnapshot(ctx)
	if err != nil {
		return err
	}
	w.snapshot = snap
	w.interval = pollInterval(len(snap))

	ticker := time.NewTicker(baseInterval)
	defer ticker.Stop()

	next := time.Now().Add(w.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if now.Before(next) {
				continue
			}
			w.poll(ctx)
			next = time.Now().Add(w.interval)
		}
	}
}

// poll compares the current tree snapshot to the previous one and triggers
// analysis on any difference. Failures keep the old snapshot so the change
// is retried on the next cycle.
func (w *Watcher) poll(ctx context.Context) {
	if _, err := os.Stat(w.root); err != nil {
		slog.Warn("watcher.root_gone", "path", w.root)
		w.interval = maxInterval
		return
	}

	snap, err := w.captureSnapshot(ctx)
	if err != nil {
		slog.Warn("watcher.snapshot", "err", err)
		return
	}
	w.interval = pollInterval(len(snap))

	if snapshotsEqual(w.snapshot, snap) {
		return
	}

	slog.Info("watcher.changed", "files", len(snap))
	if err := w.analyzeFn(ctx); err != nil {
		slog.Warn("watcher.analyze", "err", err)
		return
	}
	w.snapshot = snap
}

// captureSnapshot records mtime+size for every scannable file under the root.
func (w *Watcher) captureSnapshot(ctx context.Context) (map[string]fileSnapshot, error) {
	files, err := scan.Scan(ctx, w.root, w.languages, w.ignore)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]fileSnapshot, len(files))
	for _, f := range files {
		info, statErr := os.Stat(f.Path)
		if statErr != nil {
			continue
		}
		snap[f.RelPath] = fileSnapshot{
			modTime: info.ModTime(),
			size:    info.Size(),
		}
	}
	return snap, nil
}

// snapshotsEqual reports whether two snapshots list identical files with the
// same mtime and size.
func snapshotsEqual(a, b map[string]fileSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for path, aSnap := range a {
		bSnap, ok := b[path]
		if !ok {
			return false
		}
		if !aSnap.modTime.Equal(bSnap.modTime) || aSnap.size != bSnap.size {
			return false
		}
	}
	return true
}

// pollInterval computes the adaptive interval from file count.
// 1s base + 1s per 500 files, capped at 60s.
func pollInterval(fileCount int) time.Duration {
	ms := 1000 + (fileCount/500)*1000
	if ms > 60000 {
		ms = 60000
	}
	return time.Duration(ms) * time.Millisecond
}
