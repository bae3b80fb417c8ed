// Package output handles CLI output formatting including verbose mode and progress indicators.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"relprefix/internal/renamer"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output writes line-oriented progress text. It implements renamer.Progress.
type Output struct {
	config          Config
	progressActive  bool
	progressTotal   int
	progressCurrent int
	progressMu      sync.Mutex
}

var _ renamer.Progress = (*Output)(nil)

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{
		config: config,
	}
}

// DefaultConfig returns a Config with TTY detection on stdout.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.println(o.config.Writer, format, args...)
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.println(o.config.Writer, format, args...)
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.println(o.config.ErrWriter, format, args...)
}

func (o *Output) println(w io.Writer, format string, args ...interface{}) {
	o.clearProgressLine()
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// Scanned reports how many entries a run will process.
func (o *Output) Scanned(directory string, total int) {
	o.Verbose("found %d entries in %s", total, directory)
	o.StartProgress(total)
}

// Attempt reports a rename try in verbose mode.
func (o *Output) Attempt(name string, attempt, maxAttempts int) {
	o.Verbose("attempt %d/%d: %s", attempt, maxAttempts, name)
}

// Retrying reports a locked entry that will be tried again.
func (o *Output) Retrying(name string, attempt, maxAttempts int, delay time.Duration, err error) {
	o.Info("locked: %s (attempt %d/%d), retrying in %s", name, attempt, maxAttempts, delay)
	o.Verbose("  cause: %v", err)
}

// Renamed reports a successful rename.
func (o *Output) Renamed(res renamer.Result) {
	o.Info("renamed: %s -> %s (attempt %d)", res.OldName, res.NewName, res.Attempts)
	o.advance()
}

// Failed reports an entry that keeps its original name.
func (o *Output) Failed(res renamer.Result) {
	o.Info("failed: %s: %v", res.OldName, res.Err)
	o.advance()
}

// Planned reports a dry-run rename.
func (o *Output) Planned(res renamer.Result) {
	o.Info("planned: %s -> %s", res.OldName, res.NewName)
	o.advance()
}

// Summary prints the final line of a run.
func (o *Output) Summary(report *renamer.Report) {
	o.EndProgress()
	o.Info("%s", report.SummaryLine())
	o.Verbose("took %s", report.Duration.Round(time.Millisecond))
}

func (o *Output) advance() {
	o.progressMu.Lock()
	current := o.progressCurrent + 1
	o.progressMu.Unlock()
	o.UpdateProgress(current, "Renaming")
}

// clearProgressLine clears the current progress line if active.
func (o *Output) clearProgressLine() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progressActive && o.config.IsTTY {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
	}
}

// StartProgress begins a progress indicator session.
func (o *Output) StartProgress(total int) {
	// Suppress progress when not TTY or when verbose mode is enabled
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
}

// UpdateProgress updates the progress indicator.
func (o *Output) UpdateProgress(current int, message string) {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current
	progressMsg := fmt.Sprintf("\rProcessing entry %d/%d...", current, o.progressTotal)
	if message != "" {
		progressMsg = fmt.Sprintf("\r%s %d/%d...", message, current, o.progressTotal)
	}
	fmt.Fprint(o.config.Writer, progressMsg)
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressActive = false
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
}
