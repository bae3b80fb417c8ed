package renamer

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// lockingFs fails renames of selected paths as if another process held them open.
type lockingFs struct {
	afero.Fs
	lockErr   error
	remaining map[string]int // lock failures left per old path; negative means forever
	failWith  map[string]error
	calls     map[string]int
}

func newLockingFs(base afero.Fs, lockErr error) *lockingFs {
	return &lockingFs{
		Fs:        base,
		lockErr:   lockErr,
		remaining: make(map[string]int),
		failWith:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (l *lockingFs) Rename(oldname, newname string) error {
	l.calls[oldname]++
	if err, ok := l.failWith[oldname]; ok {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	if left, ok := l.remaining[oldname]; ok && left != 0 {
		if left > 0 {
			l.remaining[oldname] = left - 1
		}
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: l.lockErr}
	}
	return l.Fs.Rename(oldname, newname)
}

// recordingProgress captures progress events as strings.
type recordingProgress struct {
	events []string
}

func (p *recordingProgress) Scanned(directory string, total int) {
	p.events = append(p.events, fmt.Sprintf("scanned %s %d", directory, total))
}

func (p *recordingProgress) Attempt(name string, attempt, maxAttempts int) {
	p.events = append(p.events, fmt.Sprintf("attempt %s %d/%d", name, attempt, maxAttempts))
}

func (p *recordingProgress) Retrying(name string, attempt, maxAttempts int, delay time.Duration, err error) {
	p.events = append(p.events, fmt.Sprintf("retry %s %d/%d %s", name, attempt, maxAttempts, delay))
}

func (p *recordingProgress) Renamed(res Result) {
	p.events = append(p.events, fmt.Sprintf("renamed %s %s", res.OldName, res.NewName))
}

func (p *recordingProgress) Failed(res Result) {
	p.events = append(p.events, fmt.Sprintf("failed %s", res.OldName))
}

func (p *recordingProgress) Planned(res Result) {
	p.events = append(p.events, fmt.Sprintf("planned %s %s", res.OldName, res.NewName))
}

// fakeSleep records requested waits without blocking.
type fakeSleep struct {
	waits []time.Duration
}

func (f *fakeSleep) Sleep(d time.Duration) {
	f.waits = append(f.waits, d)
}

func memDir(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/out", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, content := range files {
		if err := afero.WriteFile(fsys, filepath.Join("/out", name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fsys
}

func testOptions(sleep *fakeSleep) Options {
	opts := DefaultOptions()
	opts.Sleep = sleep.Sleep
	return opts
}

func assertExists(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if ok, err := afero.Exists(fsys, path); err != nil || !ok {
		t.Errorf("expected %s to exist", path)
	}
}

func assertMissing(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if ok, _ := afero.Exists(fsys, path); ok {
		t.Errorf("expected %s to be absent", path)
	}
}
