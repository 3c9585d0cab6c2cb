package emitter

import (
	"sync"

	"github.com/robmorgan/playhead/logger"
	"golang.org/x/exp/slices"
)

// log is shared by all emitters so subscriber faults land on one
// logger regardless of which component dispatched the event.
var log = logger.GetProjectLogger()

// Handle identifies a registered callback so it can be removed later.
type Handle int64

// Emitter delivers batched events to registered subscribers. Components
// hold one Emitter per event type as a struct field rather than
// inheriting emission behavior.
//
// Dispatch is synchronous and snapshot-based: a callback registered
// while an event is being delivered first sees the next event. A
// panicking subscriber is logged and skipped without starving the
// remaining subscribers.
type Emitter[T any] struct {
	mu     sync.Mutex
	nextID Handle
	subs   map[Handle]func(T)
}

// AddCallback registers fn and returns a handle for removal.
func (e *Emitter[T]) AddCallback(fn func(T)) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.subs == nil {
		e.subs = make(map[Handle]func(T))
	}
	e.nextID++
	e.subs[e.nextID] = fn
	return e.nextID
}

// RemoveCallback unregisters the callback associated with h. Unknown
// handles are ignored.
func (e *Emitter[T]) RemoveCallback(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, h)
}

// Size returns the number of registered callbacks.
func (e *Emitter[T]) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Emit delivers ev to every subscriber registered before the call, in
// registration order.
func (e *Emitter[T]) Emit(ev T) {
	e.mu.Lock()
	handles := make([]Handle, 0, len(e.subs))
	for h := range e.subs {
		handles = append(handles, h)
	}
	slices.Sort(handles)
	fns := make([]func(T), 0, len(handles))
	for _, h := range handles {
		fns = append(fns, e.subs[h])
	}
	e.mu.Unlock()

	for _, fn := range fns {
		dispatch(fn, ev)
	}
}

func dispatch[T any](fn func(T), ev T) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("event subscriber panicked: %v", r)
		}
	}()
	fn(ev)
}
