//go:build windows

package renamer

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isLockError reports whether err means another process has the entry open.
func isLockError(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
