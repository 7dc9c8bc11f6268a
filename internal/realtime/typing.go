package realtime

import (
	"sync"
	"time"
)

// autoStopTimer is a single-slot cancellable timer. Restart replaces any
// pending timer, so at most one auto-stop is ever scheduled per scope.
//
// A timer can expire in the window between a Restart or Cancel stopping it
// and its callback running; the generation check in fire keeps such a stale
// callback from emitting or from clearing the slot of its replacement.
type autoStopTimer struct {
	mu  sync.Mutex
	t   *time.Timer
	gen uint64
}

// Restart cancels a pending timer, then schedules fn after d.
func (a *autoStopTimer) Restart(d time.Duration, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
	}
	a.gen++
	gen := a.gen
	a.t = time.AfterFunc(d, func() {
		if a.fire(gen) {
			fn()
		}
	})
}

// Cancel stops and clears any pending timer.
func (a *autoStopTimer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
		a.t = nil
	}
}

// fire claims the slot for the timer of generation gen. It returns false
// when that timer was superseded before its callback ran.
func (a *autoStopTimer) fire(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen || a.t == nil {
		return false
	}
	a.t = nil
	return true
}

// pending reports whether an auto-stop is scheduled. Used by tests.
func (a *autoStopTimer) pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.t != nil
}
