package watcher

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/afero"
)

// ErrFileNotFound is returned when the file disappears while waiting.
var ErrFileNotFound = errors.New("file not found")

// ErrFileUnstable is returned when the file does not stabilize within the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// StabilityChecker waits for a file's size to stop changing, so that an
// artifact still being written by a build is not renamed mid-write.
type StabilityChecker struct {
	fs        afero.Fs
	threshold time.Duration // Time the size must remain unchanged
	timeout   time.Duration // Maximum time to wait
	interval  time.Duration // How often to sample the size
}

// NewStabilityChecker creates a StabilityChecker with a 30s timeout and a
// sampling interval of threshold/4 (at least 10ms). A nil fs means the OS
// filesystem.
func NewStabilityChecker(fs afero.Fs, threshold time.Duration) *StabilityChecker {
	interval := threshold / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return NewStabilityCheckerWithOptions(fs, threshold, 30*time.Second, interval)
}

// NewStabilityCheckerWithOptions creates a StabilityChecker with custom timeout and interval.
func NewStabilityCheckerWithOptions(fs afero.Fs, threshold, timeout, interval time.Duration) *StabilityChecker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &StabilityChecker{
		fs:        fs,
		threshold: threshold,
		timeout:   timeout,
		interval:  interval,
	}
}

// WaitForStable blocks until the file size is unchanged for the threshold,
// the timeout expires, or ctx is cancelled.
func (s *StabilityChecker) WaitForStable(ctx context.Context, path string) error {
	if s.threshold <= 0 {
		_, err := s.getFileSize(path)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lastSize, err := s.getFileSize(path)
	if err != nil {
		return err
	}
	lastChange := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			size, err := s.getFileSize(path)
			if err != nil {
				return err
			}

			if size != lastSize {
				lastSize = size
				lastChange = time.Now()
			} else if time.Since(lastChange) >= s.threshold {
				return nil
			}
		}
	}
}

func (s *StabilityChecker) getFileSize(path string) (int64, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrFileNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}
