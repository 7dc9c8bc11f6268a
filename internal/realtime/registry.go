package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// registry is an ordered list of callbacks for one handler class. Fan-out
// order equals registration order. Removal is identity-based via the token
// handed out at subscribe time, so independent subscribers never race each
// other's slots.
type registry[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// subscribe appends fn and returns a closure removing exactly this
// registration. Calling the closure twice is harmless.
func (r *registry[T]) subscribe(fn func(T)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	id := r.next
	r.subs = append(r.subs, subscription[T]{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, sub := range r.subs {
			if sub.id == id {
				r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

// dispatch invokes every handler registered at call time, in order. The
// snapshot keeps a handler that unsubscribes itself or others mid-dispatch
// from skipping or duplicating the rest, and a panicking handler is
// contained so the remaining handlers still run.
func (r *registry[T]) dispatch(v T, logger *zerolog.Logger) {
	r.mu.Lock()
	snapshot := make([]subscription[T], len(r.subs))
	copy(snapshot, r.subs)
	r.mu.Unlock()

	for _, sub := range snapshot {
		invoke(sub.fn, v, logger)
	}
}

func invoke[T any](fn func(T), v T, logger *zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil && logger != nil {
			logger.Error().Interface("panic", rec).Msg("event handler panicked")
		}
	}()
	fn(v)
}

// size reports the number of live registrations. Used by tests.
func (r *registry[T]) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
