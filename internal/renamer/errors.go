package renamer

import (
	"errors"
	"fmt"
)

// RenameErrorType represents the type of per-entry rename failure.
type RenameErrorType string

const (
	// LockTimeout indicates the entry stayed locked by another process
	// through every attempt.
	LockTimeout RenameErrorType = "LOCK_TIMEOUT"
	// DestinationExists indicates an entry already carries the new name.
	DestinationExists RenameErrorType = "DESTINATION_EXISTS"
	// RenameFailed covers any other OS-level rename failure.
	RenameFailed RenameErrorType = "RENAME_FAILED"
)

// RenameError represents a per-entry failure. It never aborts a run.
type RenameError struct {
	Type     RenameErrorType
	Name     string
	Attempts int
	Err      error
}

func (e *RenameError) Error() string {
	switch e.Type {
	case LockTimeout:
		return fmt.Sprintf("%s: %s still locked after %d attempts (%v)", e.Type, e.Name, e.Attempts, e.Err)
	case DestinationExists:
		return fmt.Sprintf("%s: %s", e.Type, e.Name)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (%v)", e.Type, e.Name, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Type, e.Name)
	}
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// ErrorType returns the RenameErrorType carried by err, or "" if err is
// not a RenameError.
func ErrorType(err error) RenameErrorType {
	var renameErr *RenameError
	if errors.As(err, &renameErr) {
		return renameErr.Type
	}
	return ""
}
