package workperiods

import (
	"sync"
	"time"
)

// DebounceDelay is the trailing-edge window for persisting working-day edits.
const DebounceDelay = 300 * time.Millisecond

// timerRegistry schedules trailing-edge callbacks keyed by string. Repeated
// triggers for the same key within the window replace the pending callback,
// so only the last one fires; distinct keys debounce independently.
type timerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newTimerRegistry() *timerRegistry {
	return &timerRegistry{timers: make(map[string]*time.Timer)}
}

// trigger (re)schedules fn to run after d. A pending callback for the same
// key is discarded, never fired.
func (r *timerRegistry) trigger(key string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
	}
	r.timers[key] = time.AfterFunc(d, func() {
		r.mu.Lock()
		delete(r.timers, key)
		r.mu.Unlock()
		fn()
	})
}

// cancel discards the pending callback for key, if any.
func (r *timerRegistry) cancel(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
		delete(r.timers, key)
	}
}

// stop discards every pending callback.
func (r *timerRegistry) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.timers {
		t.Stop()
		delete(r.timers, key)
	}
}
