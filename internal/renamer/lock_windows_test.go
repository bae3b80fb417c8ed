//go:build windows

package renamer

import "golang.org/x/sys/windows"

var lockErrno error = windows.ERROR_SHARING_VIOLATION
