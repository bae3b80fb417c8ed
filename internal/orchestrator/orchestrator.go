// Package orchestrator coordinates a relprefix run: the batch pass over the
// target directory followed by the optional watch mode.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"relprefix/internal/config"
	"relprefix/internal/logging"
	"relprefix/internal/output"
	"relprefix/internal/renamer"
	"relprefix/internal/watcher"
)

// ErrMissingPrefix is returned when neither the command line nor the
// configuration supplies a prefix.
var ErrMissingPrefix = errors.New("no prefix given")

// Deps carries the collaborators of a run. Zero values select the OS
// filesystem, stdout/stderr output, a discarding logger and time.Sleep.
type Deps struct {
	Fs    afero.Fs
	Out   *output.Output
	Log   *slog.Logger
	Sleep func(time.Duration)
}

// Summary represents the overall results of a run.
type Summary struct {
	Report *renamer.Report
	Watch  *watcher.WatchSummary // nil unless watch mode ran
}

// HasFailures returns true if any entry kept its original name.
func (s *Summary) HasFailures() bool {
	if s.Report != nil && s.Report.HasFailures() {
		return true
	}
	return s.Watch != nil && s.Watch.Failed > 0
}

// Run validates cfg, renames every entry of the target directory and, when
// enabled, keeps prefixing new entries until ctx is cancelled.
// Per-entry failures are reported in the summary, never as an error.
func Run(ctx context.Context, cfg *config.Configuration, deps Deps) (*Summary, error) {
	deps = withDefaults(deps)

	result := config.ValidateConfig(cfg)
	for _, warning := range result.Warnings {
		deps.Log.Warn("configuration warning", "field", warning.Field, "message", warning.Message)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Prefix == "" {
		return nil, ErrMissingPrefix
	}

	r := renamer.New(deps.Fs, renamer.Options{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
		Sleep:       deps.Sleep,
		Scan:        cfg.ScanOptions(),
		DryRun:      cfg.DryRun,
		Progress:    deps.Out,
		Logger:      deps.Log,
	})

	// Watching starts before the batch pass so entries created while it
	// runs are queued for watch mode.
	watching := cfg.Watch.Enabled && !cfg.DryRun
	var w *watcher.Watcher
	var startErr error
	if watching {
		w = newWatcher(cfg, deps, r)
		if startErr = w.Start(); startErr != nil {
			w = nil
		}
	}

	deps.Log.Info("renaming entries",
		"directory", cfg.Directory,
		"prefix", cfg.Prefix,
		"dryRun", cfg.DryRun)

	report, err := r.RenameAll(cfg.Directory, cfg.Prefix)
	if err != nil {
		if w != nil {
			w.Close()
		}
		return nil, fmt.Errorf("failed to rename entries: %w", err)
	}
	deps.Out.Summary(report)

	summary := &Summary{Report: report}
	if !watching {
		return summary, nil
	}
	if startErr != nil {
		return summary, fmt.Errorf("failed to start watch mode: %w", startErr)
	}

	ws := watch(ctx, cfg, deps, w, report)
	summary.Watch = &ws
	return summary, nil
}

func newWatcher(cfg *config.Configuration, deps Deps, r *renamer.Renamer) *watcher.Watcher {
	return watcher.New(deps.Fs, cfg.Directory, watcher.WatchConfig{
		Debounce:        cfg.Watch.Debounce,
		StableThreshold: cfg.Watch.StableThreshold,
		Scan:            cfg.ScanOptions(),
		Ignore:          cfg.Watch.Ignore,
	}, func(name string) renamer.Result {
		return r.RenameOne(cfg.Directory, name, cfg.Prefix)
	}, deps.Log)
}

// watch runs a started watcher until ctx is cancelled. The batch report's
// new names are expected so their queued Create events are dropped.
func watch(ctx context.Context, cfg *config.Configuration, deps Deps, w *watcher.Watcher, report *renamer.Report) watcher.WatchSummary {
	for _, res := range report.Results {
		if res.Status == renamer.StatusRenamed {
			w.Expect(res.NewName)
		}
	}
	deps.Out.Info("watching %s for new entries", cfg.Directory)

	ws := w.Run(ctx)
	deps.Out.Info("Watch stopped: %d renamed, %d failed, %d skipped", ws.Renamed, ws.Failed, ws.Skipped)
	return ws
}

func withDefaults(deps Deps) Deps {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Out == nil {
		deps.Out = output.New(output.DefaultConfig())
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	return deps
}
