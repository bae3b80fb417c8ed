package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events for the same path. A path is
// delivered on C once no Add for it has happened for the delay.
type Debouncer struct {
	// C delivers settled paths. It is never closed.
	C <-chan string

	delay  time.Duration
	ready  chan string
	stop   chan struct{}
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	ready := make(chan string)
	return &Debouncer{
		C:      ready,
		delay:  delay,
		ready:  ready,
		stop:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
}

// Add (re)starts the quiet period for path. It is a no-op after Stop.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if old, ok := d.timers[path]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timers[path] != t {
			// Superseded by a later Add or cancelled by Stop.
			d.mu.Unlock()
			return
		}
		delete(d.timers, path)
		d.mu.Unlock()

		select {
		case d.ready <- path:
		case <-d.stop:
		}
	})
	d.timers[path] = t
}

// Stop cancels every pending path and releases timers blocked on C.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
	close(d.stop)
}
