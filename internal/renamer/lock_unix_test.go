//go:build unix

package renamer

import "golang.org/x/sys/unix"

var lockErrno error = unix.EBUSY
