// Package watcher prefixes entries that appear in the target directory after
// the initial pass, for builds that keep dropping artifacts.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"relprefix/internal/logging"
	"relprefix/internal/renamer"
	"relprefix/internal/scanner"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Debounce        time.Duration       // Quiet period before an entry is handled
	StableThreshold time.Duration       // Size must stay unchanged this long
	Scan            scanner.ScanOptions // Entry policy and batch ignore patterns
	Ignore          []string            // Extra patterns for partial files
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Renamed  int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// Handler renames a single entry of the watched directory.
type Handler func(name string) renamer.Result

// Watcher monitors one directory for new entries. Events come from
// fsnotify, so dir must be on the OS filesystem; fs is used to inspect the
// entries and should view the same files.
type Watcher struct {
	fs        afero.Fs
	dir       string
	config    WatchConfig
	handle    Handler
	log       *slog.Logger
	fsWatcher *fsnotify.Watcher
	stability *StabilityChecker

	// produced holds names this process created, so the Create events its
	// own renames trigger are not prefixed again.
	produced map[string]bool
	summary  WatchSummary
}

// New creates a Watcher for dir. A nil fs means the OS filesystem and a
// nil logger discards diagnostics.
func New(fs afero.Fs, dir string, config WatchConfig, handle Handler, log *slog.Logger) *Watcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Watcher{
		fs:        fs,
		dir:       dir,
		config:    config,
		handle:    handle,
		log:       log,
		stability: NewStabilityChecker(fs, config.StableThreshold),
		produced:  make(map[string]bool),
	}
}

// Expect records a name the caller is about to create in the directory.
func (w *Watcher) Expect(name string) {
	w.produced[name] = true
}

// Start registers the directory with fsnotify. Events that happen after
// Start returns are queued until Run reads them, so Start may be called
// before the batch pass to catch entries created while it runs.
func (w *Watcher) Start() error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsWatcher.Add(w.dir); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.fsWatcher = fsWatcher
	return nil
}

// Close releases the fsnotify watcher. Run closes it on return; Close is
// for a started Watcher that will never run.
func (w *Watcher) Close() error {
	if w.fsWatcher == nil {
		return nil
	}
	return w.fsWatcher.Close()
}

// Run handles events until ctx is cancelled. Entries are renamed one at a
// time on the calling goroutine. Start must have succeeded.
func (w *Watcher) Run(ctx context.Context) WatchSummary {
	start := time.Now()
	defer w.fsWatcher.Close()

	debouncer := NewDebouncer(w.config.Debounce)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.summary.Duration = time.Since(start)
			return w.summary

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				w.summary.Duration = time.Since(start)
				return w.summary
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
				continue
			}
			if w.produced[filepath.Base(event.Name)] {
				continue
			}
			debouncer.Add(event.Name)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				w.summary.Duration = time.Since(start)
				return w.summary
			}
			w.log.Error("fsnotify error", "error", err)

		case path := <-debouncer.C:
			w.handleEntry(ctx, path)
		}
	}
}

// handleEntry applies the entry filters and renames one settled entry.
func (w *Watcher) handleEntry(ctx context.Context, path string) {
	name := filepath.Base(path)

	if w.produced[name] {
		return
	}
	if w.shouldIgnore(name) {
		w.log.Debug("ignoring entry", "name", name)
		w.summary.Skipped++
		return
	}

	info, err := w.lstat(path)
	if err != nil {
		// Renamed or removed before it settled.
		w.log.Debug("entry vanished", "name", name, "error", err)
		return
	}
	if !w.includes(info) {
		w.summary.Skipped++
		return
	}

	if info.Mode().IsRegular() {
		if err := w.stability.WaitForStable(ctx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.log.Warn("entry not stable, skipping", "name", name, "error", err)
			w.summary.Skipped++
			return
		}
	}

	res := w.handle(name)
	switch res.Status {
	case renamer.StatusRenamed:
		w.produced[res.NewName] = true
		w.summary.Renamed++
	case renamer.StatusFailed:
		w.summary.Failed++
	default:
		w.summary.Skipped++
	}
}

func (w *Watcher) lstat(path string) (os.FileInfo, error) {
	if lst, ok := w.fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(path)
		return info, err
	}
	return w.fs.Stat(path)
}

func (w *Watcher) shouldIgnore(name string) bool {
	return scanner.Ignored(name, w.config.Ignore) || scanner.Ignored(name, w.config.Scan.Ignore)
}

func (w *Watcher) includes(info os.FileInfo) bool {
	if w.config.Scan.Entries == scanner.EntriesAll {
		return true
	}
	return info.Mode().IsRegular()
}
