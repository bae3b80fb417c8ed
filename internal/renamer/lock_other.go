//go:build !unix && !windows

package renamer

func isLockError(err error) bool {
	return false
}
