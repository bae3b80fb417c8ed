// Package renamer prepends a prefix to every entry of a directory,
// retrying entries that another process holds locked.
//
// A run is not atomic. Entries are renamed one at a time in scan order and
// an interruption leaves earlier entries renamed and later ones untouched.
package renamer

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"relprefix/internal/logging"
	"relprefix/internal/scanner"
)

// Default retry bounds.
const (
	DefaultMaxAttempts = 5
	DefaultDelay       = 2 * time.Second
)

// Options configures a Renamer.
type Options struct {
	MaxAttempts int                 // Total tries per locked entry (0 means 5)
	Delay       time.Duration       // Wait between tries (default: 2s)
	Sleep       func(time.Duration) // Blocking wait; time.Sleep when nil
	Scan        scanner.ScanOptions // Entry policy, ordering and ignore patterns
	DryRun      bool                // Report planned names without renaming
	Progress    Progress
	Logger      *slog.Logger
}

// DefaultOptions returns Options with the default retry bounds.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Scan:        scanner.DefaultScanOptions(),
	}
}

// Renamer renames directory entries on a filesystem.
type Renamer struct {
	fs   afero.Fs
	opts Options
}

// New creates a Renamer. A nil fs means the OS filesystem.
func New(fs afero.Fs, opts Options) *Renamer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Renamer{fs: fs, opts: opts}
}

// RenameAll renames every scanned entry of directory to prefix+name.
// It fails only when directory cannot be enumerated; per-entry failures
// are recorded in the report and processing continues.
func (r *Renamer) RenameAll(directory, prefix string) (*Report, error) {
	start := time.Now()

	entries, err := scanner.ScanWithOptions(r.fs, directory, r.opts.Scan)
	if err != nil {
		return nil, err
	}

	r.opts.Logger.Debug("scanned directory",
		"directory", directory,
		"entries", len(entries),
		"policy", r.opts.Scan.Entries)
	r.opts.Progress.Scanned(directory, len(entries))

	report := &Report{
		Directory: directory,
		Prefix:    prefix,
		DryRun:    r.opts.DryRun,
		Results:   make([]Result, 0, len(entries)),
	}
	for _, entry := range entries {
		report.add(r.RenameOne(directory, entry.Name, prefix))
	}
	report.Duration = time.Since(start)

	return report, nil
}

// outcome classifies a single rename attempt.
type outcome int

const (
	outcomeRenamed outcome = iota
	outcomeLocked          // retryable
	outcomeFailed          // permanent
)

// RenameOne renames a single entry of directory to prefix+name.
func (r *Renamer) RenameOne(directory, name, prefix string) Result {
	res := Result{OldName: name, NewName: prefix + name}
	oldPath := filepath.Join(directory, res.OldName)
	newPath := filepath.Join(directory, res.NewName)

	if r.opts.DryRun {
		res.Status = StatusPlanned
		r.opts.Progress.Planned(res)
		return res
	}

	var lastErr error
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		res.Attempts = attempt
		r.opts.Progress.Attempt(name, attempt, r.opts.MaxAttempts)

		out, err := r.attempt(oldPath, newPath)
		switch out {
		case outcomeRenamed:
			res.Status = StatusRenamed
			r.opts.Logger.Debug("renamed", "old", oldPath, "new", newPath, "attempts", attempt)
			r.opts.Progress.Renamed(res)
			return res

		case outcomeFailed:
			var renameErr *RenameError
			if errors.As(err, &renameErr) {
				renameErr.Attempts = attempt
			}
			return r.fail(res, err)

		case outcomeLocked:
			lastErr = err
			r.opts.Logger.Debug("entry locked", "path", oldPath, "attempt", attempt, "error", err)
			if attempt < r.opts.MaxAttempts {
				r.opts.Progress.Retrying(name, attempt, r.opts.MaxAttempts, r.opts.Delay, err)
				r.opts.Sleep(r.opts.Delay)
			}
		}
	}

	return r.fail(res, &RenameError{
		Type:     LockTimeout,
		Name:     name,
		Attempts: res.Attempts,
		Err:      lastErr,
	})
}

func (r *Renamer) fail(res Result, err error) Result {
	res.Status = StatusFailed
	res.Err = err
	r.opts.Logger.Warn("rename failed", "name", res.OldName, "attempts", res.Attempts, "error", err)
	r.opts.Progress.Failed(res)
	return res
}

// attempt makes one rename try and classifies the result.
func (r *Renamer) attempt(oldPath, newPath string) (outcome, error) {
	name := filepath.Base(oldPath)

	// POSIX rename replaces an existing file, so a collision has to be
	// detected before the call.
	if oldPath != newPath && r.exists(newPath) {
		return outcomeFailed, &RenameError{
			Type: DestinationExists,
			Name: name,
			Err:  os.ErrExist,
		}
	}

	err := r.fs.Rename(oldPath, newPath)
	if err == nil {
		return outcomeRenamed, nil
	}
	if isLockError(err) {
		return outcomeLocked, err
	}
	if errors.Is(err, os.ErrExist) {
		return outcomeFailed, &RenameError{Type: DestinationExists, Name: name, Err: err}
	}
	return outcomeFailed, &RenameError{Type: RenameFailed, Name: name, Err: err}
}

func (r *Renamer) exists(path string) bool {
	var err error
	if lst, ok := r.fs.(afero.Lstater); ok {
		_, _, err = lst.LstatIfPossible(path)
	} else {
		_, err = r.fs.Stat(path)
	}
	return err == nil
}
