package renamer

import (
	"fmt"
	"time"
)

// Status is the outcome of one entry.
type Status string

const (
	StatusRenamed Status = "renamed"
	StatusFailed  Status = "failed"
	StatusPlanned Status = "planned" // dry run only
)

// Result represents the outcome of renaming a single entry.
type Result struct {
	OldName  string
	NewName  string
	Status   Status
	Attempts int   // Tries made, including the successful one
	Err      error // Set when Status is StatusFailed
}

// Report collects the results of a RenameAll run in processing order.
type Report struct {
	Directory string
	Prefix    string
	DryRun    bool
	Results   []Result
	Renamed   int
	Failed    int
	Planned   int
	Duration  time.Duration
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusRenamed:
		r.Renamed++
	case StatusFailed:
		r.Failed++
	case StatusPlanned:
		r.Planned++
	}
}

// HasFailures returns true if any entry failed to rename.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// SummaryLine returns the one-line summary printed at the end of a run.
func (r *Report) SummaryLine() string {
	if r.DryRun {
		return fmt.Sprintf("Dry run: %d entries would get prefix '%s'", r.Planned, r.Prefix)
	}
	return fmt.Sprintf("Prefix '%s' added: %d renamed, %d failed", r.Prefix, r.Renamed, r.Failed)
}
