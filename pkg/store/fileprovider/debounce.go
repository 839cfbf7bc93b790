package fileprovider

import (
	"log/slog"
	"sync"
	"time"
)

// debouncer coalesces repeated dirty signals for the same key into a
// single flush after the configured window, matching spec §4.5/§9: "model
// as a per-collection timer that coalesces dirty flags". A mutation
// arriving within the window cancels and rearms the prior timer rather
// than scheduling a second flush.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
	dirty  map[string]bool
	flush  func(key string) error
}

func newDebouncer(window time.Duration, flush func(key string) error) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
		dirty:  make(map[string]bool),
		flush:  flush,
	}
}

// mark flags key dirty and (re)arms its debounce timer.
func (d *debouncer) mark(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dirty[key] = true
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.window, func() { d.fire(key) })
}

func (d *debouncer) fire(key string) {
	if err := d.flush(key); err != nil {
		slog.Warn("fileprovider: debounced flush failed, will retry on next mutation", "collection", key, "error", err)
		return
	}
	d.mu.Lock()
	d.dirty[key] = false
	d.mu.Unlock()
}

// flushAllNow cancels every pending timer and synchronously flushes every
// key still marked dirty. Called from Disconnect, which is the one
// guaranteed flush point (spec §5).
func (d *debouncer) flushAllNow() error {
	d.mu.Lock()
	keys := make([]string, 0, len(d.dirty))
	for key, isDirty := range d.dirty {
		if isDirty {
			keys = append(keys, key)
		}
	}
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = make(map[string]*time.Timer)
	d.mu.Unlock()

	var firstErr error
	for _, key := range keys {
		if err := d.flush(key); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		d.mu.Lock()
		d.dirty[key] = false
		d.mu.Unlock()
	}
	return firstErr
}
