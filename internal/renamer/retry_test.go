//go:build unix || windows

package renamer

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestRenameSucceedsAfterTransientLock(t *testing.T) {
	fsys := newLockingFs(memDir(t, map[string]string{"a.txt": "a"}), lockErrno)
	fsys.remaining["/out/a.txt"] = 2
	sleep := &fakeSleep{}
	progress := &recordingProgress{}

	opts := testOptions(sleep)
	opts.Progress = progress
	report, err := New(fsys, opts).RenameAll("/out", "v2_")
	if err != nil {
		t.Fatalf("RenameAll failed: %v", err)
	}

	res := report.Results[0]
	if res.Status != StatusRenamed || res.Attempts != 3 {
		t.Errorf("expected success on attempt 3, got %+v", res)
	}
	if !reflect.DeepEqual(sleep.waits, []time.Duration{2 * time.Second, 2 * time.Second}) {
		t.Errorf("expected two 2s waits, got %v", sleep.waits)
	}

	want := []string{
		"scanned /out 1",
		"attempt a.txt 1/5",
		"retry a.txt 1/5 2s",
		"attempt a.txt 2/5",
		"retry a.txt 2/5 2s",
		"attempt a.txt 3/5",
		"renamed a.txt v2_a.txt",
	}
	if !reflect.DeepEqual(progress.events, want) {
		t.Errorf("expected events %v, got %v", want, progress.events)
	}
	assertExists(t, fsys, "/out/v2_a.txt")
}

func TestRenameReportsLockTimeout(t *testing.T) {
	fsys := newLockingFs(memDir(t, map[string]string{"a.txt": "a", "b.txt": "b"}), lockErrno)
	fsys.remaining["/out/a.txt"] = -1
	sleep := &fakeSleep{}

	report, err := New(fsys, testOptions(sleep)).RenameAll("/out", "v2_")
	if err != nil {
		t.Fatalf("RenameAll failed: %v", err)
	}

	if report.Failed != 1 || report.Renamed != 1 {
		t.Fatalf("expected one failure and one success, got %+v", report.Results)
	}
	failed := report.Failures()[0]
	if ErrorType(failed.Err) != LockTimeout {
		t.Errorf("expected LockTimeout, got %v", failed.Err)
	}
	if failed.Attempts != DefaultMaxAttempts || fsys.calls["/out/a.txt"] != DefaultMaxAttempts {
		t.Errorf("expected %d tries, got attempts=%d calls=%d",
			DefaultMaxAttempts, failed.Attempts, fsys.calls["/out/a.txt"])
	}
	if len(sleep.waits) != DefaultMaxAttempts-1 {
		t.Errorf("expected %d waits, got %d", DefaultMaxAttempts-1, len(sleep.waits))
	}
	if !errors.Is(failed.Err, lockErrno) {
		t.Errorf("expected the lock errno to be wrapped, got %v", failed.Err)
	}

	assertExists(t, fsys, "/out/a.txt")
	assertMissing(t, fsys, "/out/v2_a.txt")
	assertExists(t, fsys, "/out/v2_b.txt")
}

func TestRenameRespectsMaxAttemptsAndDelay(t *testing.T) {
	fsys := newLockingFs(memDir(t, map[string]string{"a.txt": "a"}), lockErrno)
	fsys.remaining["/out/a.txt"] = -1
	sleep := &fakeSleep{}

	opts := testOptions(sleep)
	opts.MaxAttempts = 2
	opts.Delay = 10 * time.Millisecond
	res := New(fsys, opts).RenameOne("/out", "a.txt", "v2_")

	if res.Status != StatusFailed || res.Attempts != 2 {
		t.Errorf("expected failure after 2 attempts, got %+v", res)
	}
	if !reflect.DeepEqual(sleep.waits, []time.Duration{10 * time.Millisecond}) {
		t.Errorf("expected one 10ms wait, got %v", sleep.waits)
	}
}

func TestRenameLockThenPermanentError(t *testing.T) {
	fsys := newLockingFs(memDir(t, map[string]string{"a.txt": "a"}), lockErrno)
	fsys.remaining["/out/a.txt"] = 1
	sleep := &fakeSleep{}

	r := New(fsys, testOptions(sleep))
	// Drop the source between attempts so the second try fails for another reason.
	r.opts.Sleep = func(d time.Duration) {
		sleep.Sleep(d)
		_ = fsys.Fs.Remove("/out/a.txt")
	}
	res := r.RenameOne("/out", "a.txt", "v2_")

	if res.Status != StatusFailed || ErrorType(res.Err) != RenameFailed {
		t.Fatalf("expected RenameFailed, got %+v", res)
	}
	var renameErr *RenameError
	if !errors.As(res.Err, &renameErr) || renameErr.Attempts != 2 {
		t.Errorf("expected the error to record 2 attempts, got %v", res.Err)
	}
}

func TestIsLockError(t *testing.T) {
	if !isLockError(lockErrno) {
		t.Errorf("expected %v to be a lock error", lockErrno)
	}
	if isLockError(errors.New("other")) {
		t.Error("plain errors are not lock errors")
	}
}
