//go:build unix

package renamer

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isLockError reports whether err means another process holds the entry.
// EBUSY covers mount points and busy files, ETXTBSY a running executable,
// EAGAIN a mandatory lock.
func isLockError(err error) bool {
	return errors.Is(err, unix.EBUSY) ||
		errors.Is(err, unix.ETXTBSY) ||
		errors.Is(err, unix.EAGAIN)
}
