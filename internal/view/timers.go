package view

import (
	"sync"
	"time"
)

// timerRegistry owns every delayed callback the store schedules, keyed by
// purpose ("reveal", "status:<participant id>"). Setting a key that already
// has a pending timer cancels the old one first, so a stale timer can never
// fire after a newer one was scheduled for the same key.
type timerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newTimerRegistry() *timerRegistry {
	return &timerRegistry{timers: make(map[string]*time.Timer)}
}

// Set schedules fn after d, replacing any pending timer for key.
func (tr *timerRegistry) Set(key string, d time.Duration, fn func()) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if t, ok := tr.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		tr.mu.Lock()
		// Only forget the entry if it is still ours; a replacement may
		// already be registered under the same key.
		if tr.timers[key] == t {
			delete(tr.timers, key)
		}
		tr.mu.Unlock()
		fn()
	})
	tr.timers[key] = t
}

// Stop cancels the pending timer for key, if any.
func (tr *timerRegistry) Stop(key string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if t, ok := tr.timers[key]; ok {
		t.Stop()
		delete(tr.timers, key)
	}
}

// StopAll cancels everything. Called on room teardown.
func (tr *timerRegistry) StopAll() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for key, t := range tr.timers {
		t.Stop()
		delete(tr.timers, key)
	}
}
